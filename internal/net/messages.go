// Package net implements fenrir's TCP wire protocol: fixed-width binary
// messages for order placement, cancellation and replacement, and the
// execution/error reports sent back. Adapted from the teacher's
// internal/net/messages.go, generalized to a single-symbol book (no
// AssetType on the wire) and extended with a ReplaceOrder message so
// the engine's Replace operation is reachable over the wire, not just
// in-process.
package net

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"

	"fenrir/internal/models"
)

var (
	ErrInvalidMessageType = errors.New("net: invalid message type")
	ErrMessageTooShort    = errors.New("net: message too short")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ReplaceOrder
	LogBook
)

type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

// Message format constants. All multi-byte integers are big-endian.
const (
	BaseMessageHeaderLen = 2 // MessageType

	// OrderType(2) + Side(1) + TIF(1) + LimitPrice(8) + Quantity(8) + UsernameLen(1)
	NewOrderMessageHeaderLen = 2 + 1 + 1 + 8 + 8 + 1
	// OrderUUID(16)
	CancelOrderMessageHeaderLen = 16
	// OrderUUID(16) + HasPrice(1) + NewPrice(8) + HasQty(1) + NewQty(8) + HasTIF(1) + NewTIF(1)
	ReplaceOrderMessageLen = 16 + 1 + 8 + 1 + 8 + 1 + 1
)

type Message interface {
	GetType() MessageType
}

type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

// ParseMessage decodes a single wire message, including its 2-byte type
// header.
func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case ReplaceOrder:
		return parseReplaceOrder(body)
	case LogBook:
		return BaseMessage{TypeOf: LogBook}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

// NewOrderMessage is a client's request to submit a new order.
type NewOrderMessage struct {
	BaseMessage
	OrderUUID  uuid.UUID
	OrderType  models.OrderType
	Side       models.Side
	TIF        models.TimeInForce
	LimitPrice float64 // meaningful iff OrderType == Limit
	Quantity   uint64
	Username   string
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.OrderType = models.OrderType(binary.BigEndian.Uint16(msg[0:2]))
	m.Side = models.Side(msg[2])
	m.TIF = models.TimeInForce(msg[3])
	m.LimitPrice = math.Float64frombits(binary.BigEndian.Uint64(msg[4:12]))
	m.Quantity = binary.BigEndian.Uint64(msg[12:20])
	usernameLen := int(msg[20])

	if len(msg) < NewOrderMessageHeaderLen+usernameLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Username = string(msg[NewOrderMessageHeaderLen : NewOrderMessageHeaderLen+usernameLen])
	m.OrderUUID = uuid.New()
	return m, nil
}

// Encode serializes a NewOrderMessage back to wire form, used by the
// client side (cmd/fenrir) to build requests.
func (m NewOrderMessage) Encode() []byte {
	usernameLen := len(m.Username)
	buf := make([]byte, BaseMessageHeaderLen+NewOrderMessageHeaderLen+usernameLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(m.OrderType))
	buf[4] = byte(m.Side)
	buf[5] = byte(m.TIF)
	binary.BigEndian.PutUint64(buf[6:14], math.Float64bits(m.LimitPrice))
	binary.BigEndian.PutUint64(buf[14:22], m.Quantity)
	buf[22] = byte(usernameLen)
	copy(buf[23:], m.Username)
	return buf
}

// CancelOrderMessage is a client's request to cancel a resting order.
type CancelOrderMessage struct {
	BaseMessage
	OrderUUID uuid.UUID
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	id, err := uuid.FromBytes(msg[0:16])
	if err != nil {
		return CancelOrderMessage{}, err
	}
	return CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}, OrderUUID: id}, nil
}

func (m CancelOrderMessage) Encode() []byte {
	buf := make([]byte, BaseMessageHeaderLen+CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	idBytes, _ := m.OrderUUID.MarshalBinary()
	copy(buf[2:18], idBytes)
	return buf
}

// ReplaceOrderMessage is a client's request to replace a resting order's
// price, quantity, and/or time-in-force. Each optional field carries a
// presence flag immediately before it.
type ReplaceOrderMessage struct {
	BaseMessage
	OrderUUID uuid.UUID
	HasPrice  bool
	NewPrice  float64
	HasQty    bool
	NewQty    uint64
	HasTIF    bool
	NewTIF    models.TimeInForce
}

func parseReplaceOrder(msg []byte) (ReplaceOrderMessage, error) {
	if len(msg) < ReplaceOrderMessageLen {
		return ReplaceOrderMessage{}, ErrMessageTooShort
	}
	id, err := uuid.FromBytes(msg[0:16])
	if err != nil {
		return ReplaceOrderMessage{}, err
	}
	m := ReplaceOrderMessage{BaseMessage: BaseMessage{TypeOf: ReplaceOrder}, OrderUUID: id}
	m.HasPrice = msg[16] != 0
	m.NewPrice = math.Float64frombits(binary.BigEndian.Uint64(msg[17:25]))
	m.HasQty = msg[25] != 0
	m.NewQty = binary.BigEndian.Uint64(msg[26:34])
	m.HasTIF = msg[34] != 0
	m.NewTIF = models.TimeInForce(msg[35])
	return m, nil
}

func (m ReplaceOrderMessage) Encode() []byte {
	buf := make([]byte, BaseMessageHeaderLen+ReplaceOrderMessageLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReplaceOrder))
	idBytes, _ := m.OrderUUID.MarshalBinary()
	copy(buf[2:18], idBytes)
	if m.HasPrice {
		buf[18] = 1
	}
	binary.BigEndian.PutUint64(buf[19:27], math.Float64bits(m.NewPrice))
	if m.HasQty {
		buf[27] = 1
	}
	binary.BigEndian.PutUint64(buf[28:36], m.NewQty)
	if m.HasTIF {
		buf[36] = 1
	}
	buf[37] = byte(m.NewTIF)
	return buf
}

// Report is an execution or error notification sent back to a client.
type Report struct {
	MessageType  ReportMessageType
	Side         models.Side
	Timestamp    uint64
	Quantity     uint64
	Price        float64
	OrderUUID    uuid.UUID
	Counterparty string
	Err          string
}

const reportFixedHeaderLen = 1 + 1 + 8 + 8 + 8 + 2 + 4 + 16

// Serialize encodes a Report for the wire.
func (r *Report) Serialize() []byte {
	totalSize := reportFixedHeaderLen + len(r.Err) + len(r.Counterparty)
	buf := make([]byte, totalSize)
	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[2:10], r.Timestamp)
	binary.BigEndian.PutUint64(buf[10:18], r.Quantity)
	binary.BigEndian.PutUint64(buf[18:26], math.Float64bits(r.Price))
	binary.BigEndian.PutUint16(buf[26:28], uint16(len(r.Counterparty)))
	binary.BigEndian.PutUint32(buf[28:32], uint32(len(r.Err)))
	idBytes, _ := r.OrderUUID.MarshalBinary()
	copy(buf[32:48], idBytes)

	offset := reportFixedHeaderLen
	copy(buf[offset:], r.Err)
	offset += len(r.Err)
	copy(buf[offset:], r.Counterparty)
	return buf
}
