// Command paintdemo runs a synthetic stroke through the full pipeline
// and writes the committed layer as a PNG. Useful for eyeballing brush
// parameters without a tablet attached.
package main

import (
	"context"
	"flag"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/accum"
	_ "github.com/gogpu/paintcore/accum/gpu"
	"github.com/gogpu/paintcore/brush"
	"github.com/gogpu/paintcore/config"
	"github.com/gogpu/paintcore/input"
	"github.com/gogpu/paintcore/stroke"
)

func main() {
	var (
		size     = flag.Int("size", 512, "canvas size in pixels")
		output   = flag.String("output", "stroke.png", "output file")
		tuning   = flag.String("tuning", "", "tuning policy file")
		brushPx  = flag.Float64("brush", 24, "brush diameter in pixels")
		hardness = flag.Float64("hardness", 0.6, "brush hardness [0,1]")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		paintcore.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	policy := config.Default()
	if *tuning != "" {
		var err error
		if policy, err = config.Load(*tuning); err != nil {
			log.Fatalf("tuning: %v", err)
		}
	}

	sel := accum.NewSelector(policy.Backend)
	if sel == nil {
		log.Fatal("no accumulator backend available")
	}
	log.Printf("backend: %s", sel.Current().Name())

	store := paintcore.NewMemoryLayerStore()
	store.AddLayer("demo", *size, *size)
	engine := brush.NewEngine(paintcore.StaticBrush{Config: paintcore.BrushConfig{
		Size:            *brushPx,
		Roundness:       1,
		Hardness:        float32(*hardness),
		Spacing:         0.15,
		Opacity:         1,
		Flow:            0.9,
		Color:           paintcore.RGB(0.1, 0.2, 0.8),
		PressureSize:    true,
		PressureOpacity: true,
		Interpolate:     true,
	}}, brush.WithSmootherWindow(policy.SmootherWindow))

	machine := stroke.NewMachine(sel, engine, store, "demo",
		stroke.WithQueueCapacity(policy.QueueCapacity),
		stroke.WithSuppressionWindow(policy.SuppressionWindow()))
	driver := stroke.NewFrameDriver(machine, nil, store, "demo",
		stroke.WithFrameInterval(policy.FrameInterval()))

	norm := input.NewNormalizer(nil)
	router := input.NewRouter(nil)
	ctx := context.Background()

	// A pressure-modulated sine sweep across the canvas.
	for i, ev := range sineSweep(*size) {
		for _, s := range router.Route(norm.NormalizePointer(ev)) {
			if err := machine.HandleSample(ctx, s); err != nil {
				log.Fatalf("sample %d: %v", i, err)
			}
		}
		// Tick the driver every few samples the way a 60 Hz frame
		// clock would against a 240 Hz tablet.
		if i%4 == 0 {
			if err := driver.Step(ctx); err != nil {
				log.Fatalf("frame: %v", err)
			}
		}
	}
	machine.Wait()
	if err := machine.Finish(ctx); err != nil {
		log.Fatalf("finish: %v", err)
	}

	layer, err := store.GetImageSnapshot("demo")
	if err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, layer.ToImage()); err != nil {
		log.Fatalf("encode: %v", err)
	}
	log.Printf("wrote %s (%dx%d, %d frames)", *output, *size, *size, driver.Frames())
}

// sineSweep produces pointer events tracing a sine wave with pressure
// rising and falling along the sweep.
func sineSweep(size int) []input.PointerEvent {
	const steps = 200
	events := make([]input.PointerEvent, 0, steps+2)
	w := float64(size)

	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		phase := paintcore.PhaseMove
		if i == 0 {
			phase = paintcore.PhaseDown
		}
		events = append(events, input.PointerEvent{
			X:         w * (0.1 + 0.8*t),
			Y:         w/2 + w/6*math.Sin(t*4*math.Pi),
			Pressure:  float32(math.Sin(t * math.Pi)),
			TimeUs:    uint64(i * 4000),
			PointerID: 1,
			Phase:     phase,
			Trusted:   true,
		})
	}
	last := events[len(events)-1]
	last.Phase = paintcore.PhaseUp
	last.Pressure = 0
	last.TimeUs += 4000
	return append(events, last)
}
