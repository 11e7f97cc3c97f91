package main

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavepool/floater"
	"wavepool/sim"
)

// Game drives the simulation from the ebiten loop and holds the render
// buffers.
type Game struct {
	sim *sim.Simulation

	heights []float32
	pixels  []byte
	surface *ebiten.Image
	bodies  []floater.Body

	lastUpdate      time.Time
	lastSimDuration time.Duration
	lastTicks       int
	lastWarn        time.Time

	pointerDown bool
	held        floater.ID
	holding     bool
	dragSpring  harmonica.Spring
	dragPos     [2]float64
	dragVel     [2]float64
	scored      map[floater.ID]bool

	autoRain      bool
	autoRainRand  *rand.Rand
	autoRainFrame int
	profile       *cpuProfile

	sceneRand *rand.Rand
	seed      int64
}

// newGame wraps s and scatters the floaters.
func newGame(s *sim.Simulation, floaters int, seed int64) *Game {
	res := s.Resolution()
	g := &Game{
		sim:        s,
		pixels:     make([]byte, res*res*4),
		surface:    ebiten.NewImage(res, res),
		scored:     make(map[floater.ID]bool),
		sceneRand:  rand.New(rand.NewSource(seed)),
		dragSpring: harmonica.NewSpring(harmonica.FPS(ebiten.TPS()), dragFrequency, dragDamping),
		seed:       seed,
	}
	g.scatterFloaters(floaters)
	return g
}

// Update advances the simulation by the time since the previous frame and
// applies pointer input.
func (g *Game) Update() error {
	now := time.Now()
	elapsed := time.Second / 60
	if !g.lastUpdate.IsZero() {
		elapsed = now.Sub(g.lastUpdate)
	}
	g.lastUpdate = now

	if g.autoRain {
		if g.profile == nil || g.profile.Expired(now) {
			g.finishAutoRain()
			return ebiten.Termination
		}
		g.rainStep()
	} else {
		g.handlePointer()
		g.handleDrag()
	}
	g.handleDebugControls()

	simStart := time.Now()
	ticks, err := g.sim.Step(elapsed)
	g.lastSimDuration = time.Since(simStart)
	g.lastTicks = ticks
	if err != nil {
		if errors.Is(err, sim.ErrShutdown) {
			return ebiten.Termination
		}
		g.warn("simulation step failed: %v", err)
	}
	g.checkGoal()
	return nil
}

// handlePointer turns a held left button into an impact under the cursor.
func (g *Game) handlePointer() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.pointerDown {
			g.pointerDown = false
			if err := g.sim.ClearImpulse(); err != nil {
				g.warn("clearing impulse: %v", err)
			}
		}
		return
	}
	x, z, ok := g.cursorWorld()
	if !ok {
		return
	}
	g.pointerDown = true
	if err := g.sim.Impact(x, z); err != nil {
		g.warn("impact: %v", err)
	}
}

// handleDrag lets the right button pick up the nearest floater. A held
// floater is suspended and springs after the cursor until released.
func (g *Game) handleDrag() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if x, z, ok := g.cursorWorld(); ok {
			if b, found := g.nearestBody(x, z); found && !g.scored[b.ID] {
				if err := g.sim.SetSuspended(b.ID, true); err == nil {
					g.held, g.holding = b.ID, true
					g.dragPos = [2]float64{b.Position.X(), b.Position.Z()}
					g.dragVel = [2]float64{}
				}
			}
		}
	}
	if !g.holding {
		return
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		g.holding = false
		if err := g.sim.SetSuspended(g.held, false); err != nil {
			g.warn("releasing %s: %v", g.held, err)
		}
		return
	}
	b, ok := g.sim.Body(g.held)
	if !ok {
		g.holding = false
		return
	}
	if x, z, ok := g.cursorWorld(); ok {
		target := [2]float64{x, z}
		for i := range g.dragPos {
			g.dragPos[i], g.dragVel[i] = g.dragSpring.Update(g.dragPos[i], g.dragVel[i], target[i])
		}
		b.Position = mgl64.Vec3{g.dragPos[0], b.Position.Y(), g.dragPos[1]}
		b.Velocity = mgl64.Vec3{}
		if err := g.sim.UpdateBody(b); err != nil {
			g.warn("moving %s: %v", g.held, err)
		}
	}
}

// nearestBody finds the floater closest to world (x, z) within pickRadius.
func (g *Game) nearestBody(x, z float64) (floater.Body, bool) {
	g.bodies = g.sim.Bodies(g.bodies)
	best := pickRadius
	var nearest floater.Body
	found := false
	for _, b := range g.bodies {
		if d := math.Hypot(b.Position.X()-x, b.Position.Z()-z); d <= best {
			best, nearest, found = d, b, true
		}
	}
	return nearest, found
}

// checkGoal parks every free floater that drifted into the goal zone.
func (g *Game) checkGoal() {
	g.bodies = g.sim.Bodies(g.bodies)
	for _, b := range g.bodies {
		if b.Suspended || g.scored[b.ID] {
			continue
		}
		if math.Hypot(b.Position.X()-goalX, b.Position.Z()-goalZ) > goalRadius {
			continue
		}
		if err := g.sim.SetSuspended(b.ID, true); err != nil {
			continue
		}
		g.scored[b.ID] = true
		log.Printf("%s reached the goal (%d/%d)", b.ID, len(g.scored), len(g.bodies))
	}
}

// cursorWorld maps the cursor onto world (x, z).
func (g *Game) cursorWorld() (x, z float64, ok bool) {
	cx, cy := ebiten.CursorPosition()
	if cx < 0 || cy < 0 || cx >= viewSize || cy >= viewSize {
		return 0, 0, false
	}
	x, z = screenToWorld(float64(cx), float64(cy), g.sim.Config().Domain.Size)
	return x, z, true
}

// warn logs at most once per warnLogInterval.
func (g *Game) warn(format string, args ...any) {
	now := time.Now()
	if now.Sub(g.lastWarn) < warnLogInterval {
		return
	}
	g.lastWarn = now
	log.Printf(format, args...)
}

// screenToWorld maps a view pixel to world (x, z). Screen y grows with
// world z.
func screenToWorld(sx, sy, size float64) (x, z float64) {
	scale := size / viewSize
	return sx*scale - size/2, sy*scale - size/2
}

// worldToScreen is the inverse of screenToWorld.
func worldToScreen(x, z, size float64) (sx, sy float64) {
	scale := viewSize / size
	return (x + size/2) * scale, (z + size/2) * scale
}
