// Package protocol implements the binary wire format clients use to talk
// to the exchange server, adapted from the teacher's internal/net/messages.go:
// same big-endian fixed-header-plus-variable-tail framing, generalized
// from float64 tickers/prices to the matching core's integer symbol ids
// and integer tick prices.
package protocol

import (
	"encoding/binary"
	"errors"

	"fenrir/internal/matching"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType identifies an inbound client message.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	AddSymbol
	RemoveSymbol
)

// ReportType identifies an outbound server report.
type ReportType uint16

const (
	ReportTrade ReportType = iota
	ReportOrderAdded
	ReportOrderUpdated
	ReportOrderExecuted
	ReportOrderDeleted
	ReportOrderRejected
	ReportCancelRejected
	ReportError
)

const (
	// headerLen is the 2-byte message/report type tag every frame starts with.
	headerLen = 2

	// newOrderBodyLen: orderID(8) + userID(8) + symbolID(4) + side(1) +
	// type(1) + tif(1) + price(8) + quantity(8).
	newOrderBodyLen = 8 + 8 + 4 + 1 + 1 + 1 + 8 + 8

	// cancelOrderBodyLen: orderID(8) + symbolID(4).
	cancelOrderBodyLen = 8 + 4

	// symbolBodyLen: symbolID(4).
	symbolBodyLen = 4
)

// NewOrderMessage is the wire form of a PlaceOrder command.
type NewOrderMessage struct {
	OrderID     uint64
	UserID      uint64
	SymbolID    uint32
	Side        matching.Side
	Type        matching.OrderType
	TimeInForce matching.TimeInForce
	Price       uint64
	Quantity    uint64
}

// Command converts the wire message to a matching.PlaceOrder command.
func (m NewOrderMessage) Command() matching.PlaceOrder {
	return matching.PlaceOrder{
		OrderID:     m.OrderID,
		UserID:      m.UserID,
		SymbolID:    m.SymbolID,
		Side:        m.Side,
		Type:        m.Type,
		TimeInForce: m.TimeInForce,
		Price:       m.Price,
		Quantity:    m.Quantity,
	}
}

// Encode serializes a NewOrderMessage frame, header included.
func (m NewOrderMessage) Encode() []byte {
	buf := make([]byte, headerLen+newOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint64(buf[2:10], m.OrderID)
	binary.BigEndian.PutUint64(buf[10:18], m.UserID)
	binary.BigEndian.PutUint32(buf[18:22], m.SymbolID)
	buf[22] = byte(m.Side)
	buf[23] = byte(m.Type)
	buf[24] = byte(m.TimeInForce)
	binary.BigEndian.PutUint64(buf[25:33], m.Price)
	binary.BigEndian.PutUint64(buf[33:41], m.Quantity)
	return buf
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < newOrderBodyLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	return NewOrderMessage{
		OrderID:     binary.BigEndian.Uint64(body[0:8]),
		UserID:      binary.BigEndian.Uint64(body[8:16]),
		SymbolID:    binary.BigEndian.Uint32(body[16:20]),
		Side:        matching.Side(body[20]),
		Type:        matching.OrderType(body[21]),
		TimeInForce: matching.TimeInForce(body[22]),
		Price:       binary.BigEndian.Uint64(body[23:31]),
		Quantity:    binary.BigEndian.Uint64(body[31:39]),
	}, nil
}

// CancelOrderMessage is the wire form of a CancelOrder command.
type CancelOrderMessage struct {
	OrderID  uint64
	SymbolID uint32
}

func (m CancelOrderMessage) Command() matching.CancelOrder {
	return matching.CancelOrder{SymbolID: m.SymbolID, OrderID: m.OrderID}
}

func (m CancelOrderMessage) Encode() []byte {
	buf := make([]byte, headerLen+cancelOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint64(buf[2:10], m.OrderID)
	binary.BigEndian.PutUint32(buf[10:14], m.SymbolID)
	return buf
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	if len(body) < cancelOrderBodyLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{
		OrderID:  binary.BigEndian.Uint64(body[0:8]),
		SymbolID: binary.BigEndian.Uint32(body[8:12]),
	}, nil
}

// SymbolMessage is the wire form of AddOrderBook/RemoveOrderBook.
type SymbolMessage struct {
	SymbolID uint32
}

func (m SymbolMessage) Encode(t MessageType) []byte {
	buf := make([]byte, headerLen+symbolBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(t))
	binary.BigEndian.PutUint32(buf[2:6], m.SymbolID)
	return buf
}

func parseSymbol(body []byte) (SymbolMessage, error) {
	if len(body) < symbolBodyLen {
		return SymbolMessage{}, ErrMessageTooShort
	}
	return SymbolMessage{SymbolID: binary.BigEndian.Uint32(body[0:4])}, nil
}

// ParseMessage reads the type tag off msg and decodes the matching body.
// The returned value is one of NewOrderMessage, CancelOrderMessage, or
// SymbolMessage; callers switch on the returned MessageType to know which.
func ParseMessage(msg []byte) (MessageType, any, error) {
	if len(msg) < headerLen {
		return 0, nil, ErrMessageTooShort
	}
	t := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[headerLen:]
	switch t {
	case NewOrder:
		m, err := parseNewOrder(body)
		return t, m, err
	case CancelOrder:
		m, err := parseCancelOrder(body)
		return t, m, err
	case AddSymbol, RemoveSymbol:
		m, err := parseSymbol(body)
		return t, m, err
	default:
		return t, nil, ErrInvalidMessageType
	}
}
