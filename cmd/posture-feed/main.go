// posture-feed streams landmark frames into a running posture server,
// standing in for a real pose estimator during development. By default
// it produces a synthetic upright seated pose with a little jitter, and
// can be told to start slouching after a delay to exercise calibration,
// scoring, and alerting end to end. With -replay it loops over recorded
// frames from a JSONL file instead.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Posture server host:port")
	fps := flag.Int("fps", 30, "Frames per second")
	slouchAfter := flag.Duration("slouch-after", 0, "Start slouching after this delay (0 = never)")
	replay := flag.String("replay", "", "JSONL file of recorded frames to loop instead of synthesizing")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log.Init(*logLevel)

	var recorded []*landmark.Frame
	if *replay != "" {
		frames, err := loadReplay(*replay)
		if err != nil {
			log.Error("replay load failed", "file", *replay, "error", err)
			os.Exit(1)
		}
		recorded = frames
		log.Info("replaying recorded frames", "file", *replay, "frames", len(recorded))
	}

	url := "ws://" + *addr + "/ws/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Error("dial failed", "url", url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("connected", "url", url, "fps", *fps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(*fps))
	defer ticker.Stop()

	start := time.Now()
	sent := 0
	for {
		select {
		case <-sigChan:
			log.Info("stopping feed")
			return
		case <-ticker.C:
			var frame *landmark.Frame
			if len(recorded) > 0 {
				frame = recorded[sent%len(recorded)]
				frame.TimestampMs = time.Now().UnixMilli()
			} else {
				slouch := 0.0
				if *slouchAfter > 0 && time.Since(start) > *slouchAfter {
					// Ramp the head down over two seconds and hold.
					ramp := time.Since(start) - *slouchAfter
					slouch = 0.06 * math.Min(ramp.Seconds()/2, 1)
				}
				frame = syntheticFrame(time.Since(start), slouch)
			}
			sent++

			msg, err := protocol.NewFrameMessage(frame)
			if err != nil {
				log.Error("encode frame failed", "error", err)
				return
			}
			data, err := msg.Bytes()
			if err != nil {
				log.Error("encode frame failed", "error", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("write failed", "error", err)
				return
			}
		}
	}
}

// loadReplay reads one frame payload per line. Lines that do not parse
// or carry the wrong landmark count are skipped with a warning.
func loadReplay(path string) ([]*landmark.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var frames []*landmark.Frame
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var fd protocol.FrameData
		if err := json.Unmarshal(scanner.Bytes(), &fd); err != nil {
			log.Warn("replay: bad line skipped", "line", line, "error", err)
			continue
		}
		frame, err := fd.Frame()
		if err != nil {
			log.Warn("replay: bad frame skipped", "line", line, "error", err)
			continue
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// syntheticFrame builds an upright seated pose with per-frame jitter.
// slouch lowers the head toward the shoulders, shrinking the
// face-to-shoulder ratio the way a real slouch does.
func syntheticFrame(elapsed time.Duration, slouch float64) *landmark.Frame {
	t := elapsed.Seconds()
	sway := 0.004 * math.Sin(t*0.8)

	f := &landmark.Frame{TimestampMs: time.Now().UnixMilli()}

	set := func(i int, x, y, z float64) {
		f.Points[i] = landmark.Landmark{
			X:          x + sway + jitter(),
			Y:          y + jitter(),
			Z:          z + jitter(),
			Visibility: 0.97 + rand.Float64()*0.03,
		}
	}

	headDrop := slouch
	set(landmark.Nose, 0.50, 0.30+headDrop, -0.25)
	set(landmark.LeftEye, 0.53, 0.27+headDrop, -0.24)
	set(landmark.RightEye, 0.47, 0.27+headDrop, -0.24)
	set(landmark.LeftEar, 0.56, 0.29+headDrop, -0.12)
	set(landmark.RightEar, 0.44, 0.29+headDrop, -0.12)
	set(landmark.LeftShoulder, 0.62, 0.48, -0.05)
	set(landmark.RightShoulder, 0.38, 0.48, -0.05)
	set(landmark.LeftHip, 0.58, 0.80, 0.00)
	set(landmark.RightHip, 0.42, 0.80, 0.00)

	return f
}

// jitter keeps the ratio stream moving above the pipeline's stuck
// epsilon, like a live camera feed would.
func jitter() float64 {
	return (rand.Float64() - 0.5) * 0.006
}
