// Command exchangectl is a CLI client for exchanged, adapted from the
// teacher's cmd/client/client.go: same connect-then-fire-one-command
// shape, pflag in place of the stdlib flag package for consistency with
// exchanged's own flag set, and integer symbol ids / tick prices in place
// of ticker strings and float64 prices.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"fenrir/internal/matching"
	"fenrir/internal/protocol"
)

func main() {
	serverAddr := pflag.String("server", "127.0.0.1:9001", "address of the exchange server")
	action := pflag.String("action", "place", "action to perform: place, cancel, add-symbol, remove-symbol")

	orderID := pflag.Uint64("order-id", 0, "order id (place/cancel)")
	userID := pflag.Uint64("user-id", 0, "user id (place)")
	symbolID := pflag.Uint32("symbol-id", 0, "symbol id")
	sideStr := pflag.String("side", "bid", "order side: bid or ask")
	typeStr := pflag.String("type", "limit", "order type: limit or market")
	tifStr := pflag.String("tif", "gtc", "time in force: gtc, ioc, or fok")
	price := pflag.Uint64("price", 0, "limit price in ticks (ignored for market orders)")
	quantity := pflag.Uint64("quantity", 0, "order quantity")

	pflag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "exchangectl: failed to connect to %s: %v\n", *serverAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	go readReports(conn)

	switch strings.ToLower(*action) {
	case "place":
		side := matching.Bid
		if strings.ToLower(*sideStr) == "ask" {
			side = matching.Ask
		}
		orderType := matching.Limit
		if strings.ToLower(*typeStr) == "market" {
			orderType = matching.Market
		}
		tif := parseTIF(*tifStr)

		msg := protocol.NewOrderMessage{
			OrderID:     *orderID,
			UserID:      *userID,
			SymbolID:    *symbolID,
			Side:        side,
			Type:        orderType,
			TimeInForce: tif,
			Price:       *price,
			Quantity:    *quantity,
		}
		if _, err := conn.Write(msg.Encode()); err != nil {
			fmt.Fprintf(os.Stderr, "exchangectl: failed to send order: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("-> placed order %d: %s %s %s qty=%d price=%d\n", *orderID, side, orderType, tif, *quantity, *price)

	case "cancel":
		msg := protocol.CancelOrderMessage{OrderID: *orderID, SymbolID: *symbolID}
		if _, err := conn.Write(msg.Encode()); err != nil {
			fmt.Fprintf(os.Stderr, "exchangectl: failed to send cancel: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("-> canceled order %d\n", *orderID)

	case "add-symbol":
		msg := protocol.SymbolMessage{SymbolID: *symbolID}
		conn.Write(msg.Encode(protocol.AddSymbol))
		fmt.Printf("-> added symbol %d\n", *symbolID)

	case "remove-symbol":
		msg := protocol.SymbolMessage{SymbolID: *symbolID}
		conn.Write(msg.Encode(protocol.RemoveSymbol))
		fmt.Printf("-> removed symbol %d\n", *symbolID)

	default:
		fmt.Fprintf(os.Stderr, "exchangectl: unknown action %q\n", *action)
		os.Exit(1)
	}

	fmt.Println("listening for reports... (Ctrl+C to exit)")
	select {}
}

func parseTIF(s string) matching.TimeInForce {
	switch strings.ToLower(s) {
	case "ioc":
		return matching.IOC
	case "fok":
		return matching.FOK
	default:
		return matching.GTC
	}
}

// readReports prints every Report frame the server sends back. It doesn't
// know a frame's exact length ahead of read because reports vary in
// size (Trade vs OrderDeleted vs error text), so it reads whatever the
// connection hands back in one Read call — adequate for a CLI tool, even
// though a production client would frame-length-prefix the stream.
func readReports(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "exchangectl: connection lost: %v\n", err)
			}
			os.Exit(0)
		}
		printReport(buf[:n])
	}
}

func printReport(frame []byte) {
	if len(frame) < 2 {
		return
	}
	kind := protocol.ReportType(binary.BigEndian.Uint16(frame[0:2]))
	switch kind {
	case protocol.ReportTrade:
		fmt.Printf("[TRADE] %s\n", frame[2:])
	case protocol.ReportError:
		fmt.Printf("[ERROR] %s\n", string(frame[2:]))
	default:
		fmt.Printf("[REPORT kind=%d] %d bytes\n", kind, len(frame)-2)
	}
}
