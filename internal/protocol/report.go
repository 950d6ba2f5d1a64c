package protocol

import (
	"encoding/binary"

	"fenrir/internal/matching"
)

// EncodeEvent serializes a matching.Event into a Report frame, the
// teacher's Report.Serialize idiom generalized from the float64-price,
// string-ticker wire shape to integer ticks and symbol ids.
//
// Layout: 2-byte ReportType header, followed by a fixed body whose shape
// depends on the report type, followed by a trailing reason/string tail
// where one applies.
func EncodeEvent(e matching.Event) []byte {
	switch ev := e.(type) {
	case matching.Trade:
		return encodeTrade(ev)
	case matching.OrderAdded:
		return encodeOrderLifecycle(ReportOrderAdded, ev.Order.OrderID, ev.Order.SymbolID, 0)
	case matching.OrderUpdated:
		return encodeOrderLifecycle(ReportOrderUpdated, ev.Order.OrderID, ev.Order.SymbolID, ev.Order.OpenQuantity())
	case matching.OrderExecuted:
		return encodeExecuted(ev)
	case matching.OrderDeleted:
		return encodeDeleted(ev)
	case matching.OrderRejected:
		return encodeRejected(ev)
	case matching.CancelRejected:
		return encodeCancelRejected(ev)
	default:
		return nil
	}
}

const reportHeaderLen = 2

func encodeTrade(t matching.Trade) []byte {
	// type(2) + tradeID(16) + symbolID(4) + price(8) + quantity(8) +
	// makerID(8) + takerID(8) + makerUserID(8) + takerUserID(8)
	buf := make([]byte, reportHeaderLen+16+4+8+8+8+8+8+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportTrade))
	copy(buf[2:18], t.TradeID[:])
	binary.BigEndian.PutUint32(buf[18:22], t.SymbolID)
	binary.BigEndian.PutUint64(buf[22:30], t.Price)
	binary.BigEndian.PutUint64(buf[30:38], t.Quantity)
	binary.BigEndian.PutUint64(buf[38:46], t.MakerID)
	binary.BigEndian.PutUint64(buf[46:54], t.TakerID)
	binary.BigEndian.PutUint64(buf[54:62], t.MakerUserID)
	binary.BigEndian.PutUint64(buf[62:70], t.TakerUserID)
	return buf
}

func encodeOrderLifecycle(rt ReportType, orderID uint64, symbolID uint32, qty uint64) []byte {
	buf := make([]byte, reportHeaderLen+8+4+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(rt))
	binary.BigEndian.PutUint64(buf[2:10], orderID)
	binary.BigEndian.PutUint32(buf[10:14], symbolID)
	binary.BigEndian.PutUint64(buf[14:22], qty)
	return buf
}

func encodeExecuted(ev matching.OrderExecuted) []byte {
	buf := make([]byte, reportHeaderLen+8+8+8+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportOrderExecuted))
	binary.BigEndian.PutUint64(buf[2:10], ev.OrderID)
	binary.BigEndian.PutUint64(buf[10:18], ev.ExecutedPrice)
	binary.BigEndian.PutUint64(buf[18:26], ev.ExecutedQuantity)
	binary.BigEndian.PutUint64(buf[26:34], ev.RemainingQty)
	return buf
}

func encodeDeleted(ev matching.OrderDeleted) []byte {
	buf := make([]byte, reportHeaderLen+8+1)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportOrderDeleted))
	binary.BigEndian.PutUint64(buf[2:10], ev.OrderID)
	buf[10] = byte(ev.Reason)
	return buf
}

func encodeRejected(ev matching.OrderRejected) []byte {
	buf := make([]byte, reportHeaderLen+8+1)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportOrderRejected))
	binary.BigEndian.PutUint64(buf[2:10], ev.OrderID)
	buf[10] = byte(ev.Reason)
	return buf
}

func encodeCancelRejected(ev matching.CancelRejected) []byte {
	buf := make([]byte, reportHeaderLen+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportCancelRejected))
	binary.BigEndian.PutUint64(buf[2:10], ev.OrderID)
	return buf
}

// EncodeErrorReport serializes a server-side error into a Report frame
// the client's read loop can recognize and print.
func EncodeErrorReport(errStr string) []byte {
	buf := make([]byte, reportHeaderLen+len(errStr))
	binary.BigEndian.PutUint16(buf[0:2], uint16(ReportError))
	copy(buf[2:], errStr)
	return buf
}
