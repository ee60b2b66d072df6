package net

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/models"
)

func TestNewOrderMessageRoundTrip(t *testing.T) {
	msg := NewOrderMessage{
		BaseMessage: BaseMessage{TypeOf: NewOrder},
		OrderType:   models.Limit,
		Side:        models.Buy,
		TIF:         models.GTC,
		LimitPrice:  12.34,
		Quantity:    500,
		Username:    "alice",
	}
	encoded := msg.Encode()

	parsed, err := ParseMessage(encoded)
	require.NoError(t, err)
	got, ok := parsed.(NewOrderMessage)
	require.True(t, ok)

	assert.Equal(t, msg.OrderType, got.OrderType)
	assert.Equal(t, msg.Side, got.Side)
	assert.Equal(t, msg.TIF, got.TIF)
	assert.InDelta(t, msg.LimitPrice, got.LimitPrice, 1e-9)
	assert.Equal(t, msg.Quantity, got.Quantity)
	assert.Equal(t, msg.Username, got.Username)
}

func TestCancelOrderMessageRoundTrip(t *testing.T) {
	id := uuid.New()
	msg := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}, OrderUUID: id}
	encoded := msg.Encode()

	parsed, err := ParseMessage(encoded)
	require.NoError(t, err)
	got, ok := parsed.(CancelOrderMessage)
	require.True(t, ok)
	assert.Equal(t, id, got.OrderUUID)
}

func TestReplaceOrderMessageRoundTrip(t *testing.T) {
	id := uuid.New()
	msg := ReplaceOrderMessage{
		BaseMessage: BaseMessage{TypeOf: ReplaceOrder},
		OrderUUID:   id,
		HasPrice:    true,
		NewPrice:    101.5,
		HasQty:      true,
		NewQty:      75,
		HasTIF:      true,
		NewTIF:      models.IOC,
	}
	encoded := msg.Encode()

	parsed, err := ParseMessage(encoded)
	require.NoError(t, err)
	got, ok := parsed.(ReplaceOrderMessage)
	require.True(t, ok)

	assert.Equal(t, id, got.OrderUUID)
	assert.True(t, got.HasPrice)
	assert.InDelta(t, 101.5, got.NewPrice, 1e-9)
	assert.True(t, got.HasQty)
	assert.Equal(t, uint64(75), got.NewQty)
	assert.True(t, got.HasTIF)
	assert.Equal(t, models.IOC, got.NewTIF)
}

func TestParseMessageTooShort(t *testing.T) {
	_, err := ParseMessage([]byte{0})
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestReportSerializeIncludesVariableFields(t *testing.T) {
	r := Report{MessageType: ExecutionReport, Quantity: 10, Price: 9.5, Counterparty: "bob"}
	buf := r.Serialize()
	assert.Greater(t, len(buf), reportFixedHeaderLen)
}
