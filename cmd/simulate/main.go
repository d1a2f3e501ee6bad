// Command simulate emits synthetic WeatherFlow UDP packets for local testing
// of the collector. It uses the actual domain registry to verify each packet
// normalizes before sending, so simulated traffic matches real hub behavior.
//
// Usage:
//
//	go run ./cmd/simulate -addr 127.0.0.1:50222 -interval 1s -count 60
//	go run ./cmd/simulate -addr 127.0.0.1:50222 -poison
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net"
	"time"

	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
)

const (
	deviceSerial = "ST-00012345"
	hubSerial    = "HB-00067890"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:50222", "collector address to send packets to")
	interval := flag.Duration("interval", time.Second, "delay between observation packets")
	count := flag.Int("count", 60, "number of observation cycles to send (0 = forever)")
	poison := flag.Bool("poison", false, "periodically inject malformed packets")
	flag.Parse()

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		return fmt.Errorf("dial collector: %w", err)
	}
	defer conn.Close()

	registry := domain.DefaultRegistry()
	logger := slog.Default()

	log.Printf("sending to %s every %s", *addr, *interval)

	for i := 0; *count == 0 || i < *count; i++ {
		now := time.Now().Unix()

		packets := [][]byte{
			rapidWindPacket(now),
			obsSTPacket(now),
		}
		if i%10 == 0 {
			packets = append(packets, deviceStatusPacket(now))
		}

		for _, p := range packets {
			// Self-check: every synthetic packet must normalize against the
			// real registry before it goes on the wire.
			var raw map[string]any
			if err := json.Unmarshal(p, &raw); err != nil {
				return fmt.Errorf("generated invalid packet: %w", err)
			}
			if _, err := registry.Normalize(raw, logger); err != nil {
				return fmt.Errorf("generated unnormalizable packet: %w", err)
			}
			if _, err := conn.Write(p); err != nil {
				return fmt.Errorf("send packet: %w", err)
			}
		}

		if *poison && i%7 == 3 {
			if _, err := conn.Write([]byte("not-json{{{")); err != nil {
				return fmt.Errorf("send poison packet: %w", err)
			}
			log.Printf("sent poison packet")
		}

		log.Printf("cycle %d: sent %d packets", i+1, len(packets))
		time.Sleep(*interval)
	}

	return nil
}

// obsSTPacket builds a Tempest observation with mildly randomized readings
// around plausible mid-latitude conditions.
func obsSTPacket(epoch int64) []byte {
	temp := 18.0 + rand.Float64()*8 // °C
	humidity := 45.0 + rand.Float64()*30
	battery := 2.6 + rand.Float64()*0.2

	obs := []any{
		epoch,
		jitter(0.5), jitter(2.5), jitter(5.0), rand.Intn(360), 3,
		1008.0 + rand.Float64()*8,
		round1(temp), round1(humidity),
		rand.Intn(120000), round1(rand.Float64() * 8), rand.Intn(900),
		0.0, 0, 0.0, 0,
		round2(battery), 1,
	}

	return marshal(map[string]any{
		"serial_number":     deviceSerial,
		"type":              "obs_st",
		"hub_sn":            hubSerial,
		"obs":               []any{obs},
		"firmware_revision": 129,
	})
}

func rapidWindPacket(epoch int64) []byte {
	return marshal(map[string]any{
		"serial_number": deviceSerial,
		"type":          "rapid_wind",
		"hub_sn":        hubSerial,
		"ob":            []any{epoch, jitter(3.0), rand.Intn(360)},
	})
}

func deviceStatusPacket(epoch int64) []byte {
	return marshal(map[string]any{
		"serial_number":     deviceSerial,
		"type":              "device_status",
		"hub_sn":            hubSerial,
		"timestamp":         epoch,
		"uptime":            rand.Intn(2000000),
		"voltage":           round2(2.6 + rand.Float64()*0.2),
		"firmware_revision": 129,
		"rssi":              -40 - rand.Intn(40),
		"hub_rssi":          -50 - rand.Intn(30),
		"sensor_status":     0,
	})
}

func marshal(v map[string]any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal packet: %v", err)
	}
	return data
}

func jitter(base float64) float64 {
	return round2(base * (0.5 + rand.Float64()))
}

func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }
func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
