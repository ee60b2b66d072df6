package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/matching"
	"fenrir/internal/metrics"
	"fenrir/internal/models"
	"fenrir/internal/workerpool"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Second
)

var (
	ErrImproperConversion = errors.New("net: improper type conversion")
	ErrClientDoesNotExist = errors.New("net: client does not exist")
	ErrUnknownOrder       = errors.New("net: unknown order uuid")
)

// ClientSession is one connected TCP session.
type ClientSession struct {
	conn  net.Conn
	owner string
}

type clientMessage struct {
	clientAddress string
	message       Message
}

// Server is the TCP front end for a single-symbol matching engine. It
// owns no matching logic itself: every NewOrder/CancelOrder/ReplaceOrder
// message is translated to a models.Order / Cancel / Replace call on the
// embedded book, and the resulting trades are reported back over the
// wire to both counterparties.
type Server struct {
	address string
	port    int
	tick    models.TickSize

	book *matching.OrderBook
	pool *workerpool.Pool

	cancel context.CancelFunc

	nextOrderID   uint64
	clientToOrder map[uuid.UUID]uint64
	orderClientID map[uint64]uuid.UUID   // internal order id -> client-facing uuid, for reporting
	orderOwner    map[uint64]string      // internal order id -> owner username, for reporting
	orderSide     map[uint64]models.Side // internal order id -> side, for reporting

	sessionsLock sync.Mutex
	sessions     map[string]ClientSession // by connection address
	ownerConn    map[string]net.Conn      // by owner username

	inbox chan clientMessage
}

// New constructs a Server bound to address:port, serving orders against
// book using tick to convert wire decimal prices to ticks.
func New(address string, port int, book *matching.OrderBook, tick models.TickSize) *Server {
	return &Server{
		address:       address,
		port:          port,
		tick:          tick,
		book:          book,
		pool:          workerpool.New(defaultNWorkers),
		clientToOrder: make(map[uuid.UUID]uint64),
		orderClientID: make(map[uint64]uuid.UUID),
		orderOwner:    make(map[uint64]string),
		orderSide:     make(map[uint64]models.Side),
		sessions:      make(map[string]ClientSession),
		ownerConn:     make(map[string]net.Conn),
		inbox:         make(chan clientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server: shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts connections and processes client messages until ctx is
// canceled. It blocks until shutdown.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("server: unable to start listener")
		return
	}
	// Closing the listener once ctx is done unblocks Accept below.
	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("server: unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server: running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("server: error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("server: new client")
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.inbox:
			if err := s.handleMessage(msg); err != nil {
				log.Error().Err(err).Str("clientAddress", msg.clientAddress).Msg("server: error handling message")
				s.reportError(msg.clientAddress, err)
			}
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) error {
	switch msg.message.GetType() {
	case NewOrder:
		m, ok := msg.message.(NewOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		return s.handleNewOrder(msg.clientAddress, m)
	case CancelOrder:
		m, ok := msg.message.(CancelOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		return s.handleCancel(m)
	case ReplaceOrder:
		m, ok := msg.message.(ReplaceOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		return s.handleReplace(m)
	case LogBook:
		snap := s.book.SnapshotTop()
		log.Info().Interface("snapshot", snap).Msg("server: book snapshot")
		return nil
	default:
		return ErrInvalidMessageType
	}
}

func (s *Server) handleNewOrder(clientAddress string, m NewOrderMessage) error {
	s.sessionsLock.Lock()
	sess, ok := s.sessions[clientAddress]
	if ok {
		sess.owner = m.Username
		s.sessions[clientAddress] = sess
		s.ownerConn[m.Username] = sess.conn
	}
	s.sessionsLock.Unlock()

	var price models.Ticks
	if m.OrderType == models.Limit {
		price = s.tick.ToTicks(decimal.NewFromFloat(m.LimitPrice))
	}

	id := s.registerOrderID(m.OrderUUID, m.Username, m.Side)
	order, err := models.New(id, m.Side, m.Quantity, price, m.OrderType, m.TIF)
	if err != nil {
		return err
	}

	start := time.Now()
	trades := s.book.Add(order)
	metrics.Collect().EventLatency.WithLabelValues("add").Observe(float64(time.Since(start).Nanoseconds()))
	metrics.Collect().OrdersTotal.WithLabelValues("new").Inc()
	s.observeTop()

	s.reportTrades(trades)
	return nil
}

func (s *Server) handleCancel(m CancelOrderMessage) error {
	id, ok := s.clientOrderID(m.OrderUUID)
	if !ok {
		return ErrUnknownOrder
	}
	start := time.Now()
	s.book.Cancel(id)
	metrics.Collect().EventLatency.WithLabelValues("cancel").Observe(float64(time.Since(start).Nanoseconds()))
	metrics.Collect().OrdersTotal.WithLabelValues("cancel").Inc()
	s.observeTop()
	return nil
}

func (s *Server) handleReplace(m ReplaceOrderMessage) error {
	id, ok := s.clientOrderID(m.OrderUUID)
	if !ok {
		return ErrUnknownOrder
	}
	var price *models.Ticks
	if m.HasPrice {
		p := s.tick.ToTicks(decimal.NewFromFloat(m.NewPrice))
		price = &p
	}
	var qty *uint64
	if m.HasQty {
		qty = &m.NewQty
	}
	var tif *models.TimeInForce
	if m.HasTIF {
		tif = &m.NewTIF
	}

	start := time.Now()
	_, trades := s.book.Replace(id, price, qty, tif)
	metrics.Collect().EventLatency.WithLabelValues("replace").Observe(float64(time.Since(start).Nanoseconds()))
	metrics.Collect().OrdersTotal.WithLabelValues("replace").Inc()
	s.observeTop()

	s.reportTrades(trades)
	return nil
}

// observeTop publishes the current best bid/ask (in ticks, 0 for an
// empty side) and depth to the Prometheus gauges.
func (s *Server) observeTop() {
	top := s.book.SnapshotTop()
	metrics.Collect().ObserveTop(float64(top.BestBid), float64(top.BestAsk), top.BidDepth, top.AskDepth)
}

func (s *Server) registerOrderID(clientID uuid.UUID, owner string, side models.Side) uint64 {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	id := atomic.AddUint64(&s.nextOrderID, 1)
	s.clientToOrder[clientID] = id
	s.orderClientID[id] = clientID
	s.orderOwner[id] = owner
	s.orderSide[id] = side
	return id
}

func (s *Server) clientOrderID(clientID uuid.UUID) (uint64, bool) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	id, ok := s.clientToOrder[clientID]
	return id, ok
}

func (s *Server) reportTrades(trades []models.Trade) {
	for _, trade := range trades {
		metrics.Collect().TradesTotal.Inc()
		metrics.Collect().TradeVolume.Add(float64(trade.Qty))
		log.Info().
			Uint64("maker", trade.MakerID).
			Uint64("taker", trade.TakerID).
			Int64("price_ticks", int64(trade.Price)).
			Uint64("qty", trade.Qty).
			Msg("server: trade")

		price, _ := s.tick.ToDecimal(trade.Price).Float64()
		s.sendReportTo(trade.MakerID, trade.TakerID, trade.Qty, price, trade.Ts)
		s.sendReportTo(trade.TakerID, trade.MakerID, trade.Qty, price, trade.Ts)
	}
}

// sendReportTo writes an execution report for orderID, naming
// counterpartyID's owner as the counterparty. Silently drops the report
// if the owner isn't connected — the engine itself never blocks on wire
// delivery.
func (s *Server) sendReportTo(orderID, counterpartyID uint64, qty uint64, price float64, ts uint64) {
	s.sessionsLock.Lock()
	owner := s.orderOwner[orderID]
	side := s.orderSide[orderID]
	orderUUID := s.orderClientID[orderID]
	counterparty := s.orderOwner[counterpartyID]
	conn, ok := s.ownerConn[owner]
	s.sessionsLock.Unlock()
	if !ok {
		return
	}
	report := Report{
		MessageType:  ExecutionReport,
		Side:         side,
		Timestamp:    ts,
		Quantity:     qty,
		Price:        price,
		OrderUUID:    orderUUID,
		Counterparty: counterparty,
	}
	if _, err := conn.Write(report.Serialize()); err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("server: unable to send execution report")
	}
}

func (s *Server) reportError(clientAddress string, cause error) error {
	s.sessionsLock.Lock()
	sess, ok := s.sessions[clientAddress]
	s.sessionsLock.Unlock()
	if !ok {
		return ErrClientDoesNotExist
	}
	report := Report{MessageType: ErrorReport, Err: cause.Error()}
	_, err := sess.conn.Write(report.Serialize())
	return err
}

// handleConnection reads one message off conn, parses it, and forwards
// it to sessionHandler. Any error returned is fatal to this worker.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("server: failed setting deadline")
		return nil
	}

	select {
	case <-t.Dying():
		return nil
	default:
		buffer := make([]byte, maxRecvSize)
		n, err := conn.Read(buffer)
		if err != nil {
			s.removeSession(conn)
			return nil
		}

		message, err := ParseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("server: error parsing message")
			s.removeSession(conn)
			return nil
		}

		s.inbox <- clientMessage{clientAddress: conn.RemoteAddr().String(), message: message}
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) addSession(conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[conn.RemoteAddr().String()] = ClientSession{conn: conn}
}

func (s *Server) removeSession(conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	address := conn.RemoteAddr().String()
	if sess, ok := s.sessions[address]; ok {
		delete(s.ownerConn, sess.owner)
	}
	delete(s.sessions, address)
	_ = conn.Close()
}
