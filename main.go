package main

import (
	"errors"
	"flag"
	"log"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"

	"wavepool/field"
	"wavepool/sim"
)

func main() {
	flag.Parse()
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg := configFromFlags()
	s, err := sim.Initialize(cfg)
	if err != nil {
		var initErr *field.InitializationError
		if !errors.As(err, &initErr) {
			log.Fatalf("simulation setup failed: %v", err)
		}
		log.Printf("%v; falling back to a static surface", err)
		if s, err = sim.NewStatic(cfg); err != nil {
			log.Fatalf("static surface setup failed: %v", err)
		}
	}
	defer s.Shutdown()

	g := newGame(s, *floatersFlag, cfg.Seed)
	if *recordDefaultPGO {
		profile, err := startCPUProfile("default.pgo", pgoRecordDuration)
		if err != nil {
			log.Fatalf("starting PGO capture: %v", err)
		}
		g.enableAutoRain(profile)
		log.Printf("recording default.pgo for %s", pgoRecordDuration)
	}

	ebiten.SetWindowSize(viewSize, viewSize)
	ebiten.SetWindowTitle("Wave Pool")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("viewer: %v", err)
	}
}
