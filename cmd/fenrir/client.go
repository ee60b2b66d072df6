package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fenrir/internal/models"
	fenrirNet "fenrir/internal/net"
)

// reportFixedHeaderLen mirrors net.reportFixedHeaderLen; kept in sync by
// hand since the wire struct isn't exported field-by-field.
const reportFixedHeaderLen = 1 + 1 + 8 + 8 + 8 + 2 + 4 + 16

func newClientCmd() *cobra.Command {
	var (
		serverAddr string
		owner      string
		action     string
		sideStr    string
		typeStr    string
		tifStr     string
		price      float64
		qty        uint64
		orderUUID  string
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Connect to a running server and place or cancel orders, or ask it to log the book",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("client: --owner is required")
			}
			conn, err := net.Dial("tcp", serverAddr)
			if err != nil {
				return fmt.Errorf("client: connecting to %s: %w", serverAddr, err)
			}
			defer conn.Close()
			fmt.Printf("connected to %s as %q\n", serverAddr, owner)

			go readReports(conn)

			side := models.Buy
			if strings.EqualFold(sideStr, "sell") {
				side = models.Sell
			}
			orderType := models.Limit
			if strings.EqualFold(typeStr, "market") {
				orderType = models.Market
			}
			tif := models.GTC
			switch strings.ToUpper(tifStr) {
			case "IOC":
				tif = models.IOC
			case "FOK":
				tif = models.FOK
			}

			switch strings.ToLower(action) {
			case "place":
				msg := fenrirNet.NewOrderMessage{
					BaseMessage: fenrirNet.BaseMessage{TypeOf: fenrirNet.NewOrder},
					OrderType:   orderType,
					Side:        side,
					TIF:         tif,
					LimitPrice:  price,
					Quantity:    qty,
					Username:    owner,
				}
				if _, err := conn.Write(msg.Encode()); err != nil {
					return err
				}
				fmt.Printf("-> sent %s %s %d @ %.2f\n", side, orderType, qty, price)
			case "cancel":
				id, err := uuid.Parse(orderUUID)
				if err != nil {
					return fmt.Errorf("client: invalid --uuid: %w", err)
				}
				msg := fenrirNet.CancelOrderMessage{BaseMessage: fenrirNet.BaseMessage{TypeOf: fenrirNet.CancelOrder}, OrderUUID: id}
				if _, err := conn.Write(msg.Encode()); err != nil {
					return err
				}
				fmt.Printf("-> sent cancel for %s\n", orderUUID)
			case "log":
				buf := make([]byte, fenrirNet.BaseMessageHeaderLen)
				binary.BigEndian.PutUint16(buf[0:2], uint16(fenrirNet.LogBook))
				if _, err := conn.Write(buf); err != nil {
					return err
				}
			default:
				return fmt.Errorf("client: unknown action %q", action)
			}

			fmt.Println("listening for reports, ctrl-c to exit")
			select {}
		},
	}

	cmd.Flags().StringVar(&serverAddr, "server", "127.0.0.1:9001", "server address")
	cmd.Flags().StringVar(&owner, "owner", "", "owner username (required)")
	cmd.Flags().StringVar(&action, "action", "place", "place|cancel|log")
	cmd.Flags().StringVar(&sideStr, "side", "buy", "buy|sell")
	cmd.Flags().StringVar(&typeStr, "type", "limit", "limit|market")
	cmd.Flags().StringVar(&tifStr, "tif", "GTC", "GTC|IOC|FOK")
	cmd.Flags().Float64Var(&price, "price", 100.0, "limit price")
	cmd.Flags().Uint64Var(&qty, "qty", 10, "quantity")
	cmd.Flags().StringVar(&orderUUID, "uuid", "", "order UUID, for --action cancel")
	return cmd
}

// readReports continuously reads and prints Report messages from the
// server until the connection closes.
func readReports(conn net.Conn) {
	for {
		header := make([]byte, reportFixedHeaderLen)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Error().Err(err).Msg("client: connection lost")
			}
			os.Exit(0)
		}

		msgType := fenrirNet.ReportMessageType(header[0])
		qty := binary.BigEndian.Uint64(header[10:18])
		price := math.Float64frombits(binary.BigEndian.Uint64(header[18:26]))
		counterpartyLen := binary.BigEndian.Uint16(header[26:28])
		errLen := binary.BigEndian.Uint32(header[28:32])

		varLen := int(counterpartyLen) + int(errLen)
		var varBuf []byte
		if varLen > 0 {
			varBuf = make([]byte, varLen)
			if _, err := io.ReadFull(conn, varBuf); err != nil {
				log.Error().Err(err).Msg("client: error reading report body")
				return
			}
		}

		if msgType == fenrirNet.ErrorReport {
			fmt.Printf("\n[ERROR] %s\n", string(varBuf[:errLen]))
			continue
		}
		counterparty := string(varBuf[errLen:])
		fmt.Printf("\n[EXECUTION] qty=%d price=%.2f counterparty=%s\n", qty, price, counterparty)
	}
}
