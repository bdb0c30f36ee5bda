package engine

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yourusername/sagnubg/internal/bearoff"
	"github.com/yourusername/sagnubg/internal/met"
	"github.com/yourusername/sagnubg/internal/neuralnet"
	"github.com/yourusername/sagnubg/internal/positionid"
)

// Neutral outputs used when no weights are loaded.
var (
	neutralContact = Probs{0.5, 0.15, 0.01, 0.15, 0.01}
	neutralRace    = Probs{0.5, 0, 0, 0, 0}
)

// netSlot is a net with its pool of scratch buffers.
type netSlot struct {
	nn   *neuralnet.NeuralNet
	bufs sync.Pool
}

func newNetSlot(nn *neuralnet.NeuralNet) *netSlot {
	if nn == nil {
		return nil
	}
	s := &netSlot{nn: nn}
	s.bufs.New = func() any { return neuralnet.NewEvaluateBuffer(nn.CHidden) }
	return s
}

func (s *netSlot) evaluate(inputs []float32) Probs {
	buf := s.bufs.Get().(*neuralnet.EvaluateBuffer)
	defer s.bufs.Put(buf)

	var out [NumOutputs]float32
	s.nn.EvaluateFast(inputs, out[:], buf)

	var p Probs
	for i, v := range out {
		p[i] = float64(v)
	}
	return p
}

// Engine evaluates positions and runs rollouts. Evaluation is safe for
// concurrent use. Search settings, the RNG and the dice generator are
// not, and belong to the single goroutine driving a batch.
type Engine struct {
	contact, race, crashed    *netSlot
	pContact, pCrashed, pRace *netSlot
	weightsVersion            string

	bearoff bearoff.Source
	met     *met.Table
	cache   *EvalCache

	inputs sync.Pool

	shortcuts bool
	bounds    [4]PlyBound

	rng  *RNG
	dice *DiceGen

	log zerolog.Logger
}

// EngineOptions configures NewEngine.
type EngineOptions struct {
	WeightsFile string // gnubg.weights or gnubg.wd; empty for neutral outputs
	BearoffFile string // one-sided .bd database; empty to generate tables
	METFile     string // gnubg MET XML; empty for the built-in table

	// CacheEntries sizes the evaluation cache: 0 picks a size from
	// physical memory and a negative value disables caching.
	CacheEntries int

	Logger *zerolog.Logger
}

// NewEngine loads the configured data files.
func NewEngine(opts EngineOptions) (*Engine, error) {
	e := &Engine{
		shortcuts: true,
		bounds:    defaultPlyBounds,
		rng:       NewRNG(),
		log:       zerolog.Nop(),
	}
	e.inputs.New = func() any { return make([]float32, neuralnet.NumContactInputs) }
	e.dice = NewDiceGen(e.rng)
	if opts.Logger != nil {
		e.log = *opts.Logger
	}

	if opts.WeightsFile != "" {
		w, err := neuralnet.LoadWeights(opts.WeightsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load weights: %w", err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("failed to load weights: %w", err)
		}
		e.setWeights(w)
		e.log.Info().Str("file", opts.WeightsFile).Str("version", w.Version).Msg("weights loaded")
	}

	if opts.BearoffFile != "" {
		db, err := bearoff.Load(opts.BearoffFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load one-sided bearoff database: %w", err)
		}
		e.bearoff = db
		e.log.Info().Str("file", opts.BearoffFile).Int("chequers", db.NChequers).Msg("bearoff database loaded")
	} else {
		e.bearoff = bearoff.NewGenerator()
	}

	if opts.METFile != "" {
		table, err := met.LoadXML(opts.METFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load MET: %w", err)
		}
		e.met = table
	} else {
		e.met = met.Default()
	}

	switch size := opts.CacheEntries; {
	case size == 0:
		e.cache = NewEvalCache(DefaultCacheEntries())
	case size > 0:
		e.cache = NewEvalCache(size)
	}

	return e, nil
}

func (e *Engine) setWeights(w *neuralnet.Weights) {
	e.contact = newNetSlot(w.Contact)
	e.race = newNetSlot(w.Race)
	e.crashed = newNetSlot(w.Crashed)
	e.pContact = newNetSlot(w.PContact)
	e.pCrashed = newNetSlot(w.PCrashed)
	e.pRace = newNetSlot(w.PRace)
	e.weightsVersion = w.Version
}

// WeightsVersion returns the version of the loaded weights, or "none".
func (e *Engine) WeightsVersion() string {
	if e.weightsVersion == "" {
		return "none"
	}
	return e.weightsVersion
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l zerolog.Logger) { e.log = l }

// SetShortcuts turns pruning-net move filtering inside lookahead on or off.
func (e *Engine) SetShortcuts(on bool) {
	if on != e.shortcuts && e.cache != nil {
		e.cache.Flush()
	}
	e.shortcuts = on
}

// Shortcuts reports whether pruning nets filter moves inside lookahead.
func (e *Engine) Shortcuts() bool { return e.shortcuts }

// MET returns the match equity table.
func (e *Engine) MET() *met.Table { return e.met }

// RNG returns the dice stream.
func (e *Engine) RNG() *RNG { return e.rng }

// Dice returns the rollout dice generator.
func (e *Engine) Dice() *DiceGen { return e.dice }

// Cache returns the evaluation cache, nil when disabled.
func (e *Engine) Cache() *EvalCache { return e.cache }

// EvaluateProbs evaluates b for the side on roll, looking plies moves
// ahead.
func (e *Engine) EvaluateProbs(b Board, plies int) (Probs, error) {
	if plies < 0 {
		plies = 0
	}
	if b.GameOver() {
		return gameOverProbs(&b), nil
	}

	var key cacheKey
	if e.cache != nil {
		key = cacheKey{pos: positionid.MakeKey(positionid.Board(b)), ctx: evalContext(plies, e.shortcuts)}
		if p, ok := e.cache.Lookup(key); ok {
			return p, nil
		}
	}

	var (
		p   Probs
		err error
	)
	if plies == 0 {
		p, err = e.evaluateStatic(&b)
	} else {
		p, err = e.evaluatePlied(b, plies)
	}
	if err != nil {
		return Probs{}, err
	}

	if e.cache != nil {
		e.cache.Add(key, p)
	}
	return p, nil
}

// evaluateStatic is the 0-ply evaluation.
func (e *Engine) evaluateStatic(b *Board) (Probs, error) {
	nb := neuralnet.Board(*b)

	var (
		p   Probs
		err error
	)
	switch class := neuralnet.ClassifyPosition(nb); class {
	case neuralnet.ClassOver:
		return gameOverProbs(b), nil
	case neuralnet.ClassBearoff2, neuralnet.ClassBearoffTS, neuralnet.ClassBearoff1, neuralnet.ClassBearoffOS:
		p, err = e.evaluateBearoff(b)
		if err != nil {
			return Probs{}, err
		}
	case neuralnet.ClassRace:
		p = e.evaluateRace(nb)
	case neuralnet.ClassCrashed:
		p = e.evaluateCrashed(nb)
	case neuralnet.ClassContact:
		p = e.evaluateContact(nb)
	default:
		return Probs{}, fmt.Errorf("unknown position class: %d", class)
	}

	sanityCheck(b, &p)
	return p, nil
}

func (e *Engine) evaluateRace(b neuralnet.Board) Probs {
	if e.race == nil {
		return neutralRace
	}
	in := e.inputs.Get().([]float32)
	defer e.inputs.Put(in)
	neuralnet.RaceInputsInto(b, in)
	return e.race.evaluate(in)
}

func (e *Engine) evaluateCrashed(b neuralnet.Board) Probs {
	if e.crashed == nil {
		return e.evaluateContact(b)
	}
	in := e.inputs.Get().([]float32)
	defer e.inputs.Put(in)
	neuralnet.CrashedInputsInto(b, in)
	return e.crashed.evaluate(in)
}

func (e *Engine) evaluateContact(b neuralnet.Board) Probs {
	if e.contact == nil {
		return neutralContact
	}
	in := e.inputs.Get().([]float32)
	defer e.inputs.Put(in)
	neuralnet.ContactInputsInto(b, in)
	return e.contact.evaluate(in)
}

// homeBoard returns the six home points of side.
func homeBoard(b *Board, side int) (h [bearoff.Points]uint8) {
	copy(h[:], b[side][:bearoff.Points])
	return h
}

// evaluateBearoff combines the one-sided distributions of both sides.
// The side on roll wins when it needs no more rolls than the opponent.
func (e *Engine) evaluateBearoff(b *Board) (Probs, error) {
	on, err := e.bearoff.Distribution(homeBoard(b, 1))
	if err != nil {
		return Probs{}, fmt.Errorf("bearoff evaluation: %w", err)
	}
	opp, err := e.bearoff.Distribution(homeBoard(b, 0))
	if err != nil {
		return Probs{}, fmt.Errorf("bearoff evaluation: %w", err)
	}

	var p Probs
	var oppOffAtLeast, oppGammonAtLeast, onGammonAfter [bearoff.MaxRolls + 1]float64
	for i := bearoff.MaxRolls - 1; i >= 0; i-- {
		oppOffAtLeast[i] = oppOffAtLeast[i+1] + opp.Off[i]
		oppGammonAtLeast[i] = oppGammonAtLeast[i+1] + opp.Gammon[i]
		onGammonAfter[i] = onGammonAfter[i+1] + on.Gammon[i]
	}

	for i := range on.Off {
		p[OutputWin] += on.Off[i] * oppOffAtLeast[i]
	}
	if b.Checkers(0) == bearoff.Checkers {
		for i := range on.Off {
			p[OutputWinGammon] += on.Off[i] * oppGammonAtLeast[i]
		}
	}
	if b.Checkers(1) == bearoff.Checkers {
		for j := range opp.Off {
			p[OutputLoseGammon] += opp.Off[j] * onGammonAfter[j+1]
		}
	}
	return p, nil
}

// gameOverProbs returns the exact outcome of a finished game.
func gameOverProbs(b *Board) Probs {
	var p Probs
	lost := func(side int) (gammon, backgammon bool) {
		if b.Checkers(side) < bearoff.Checkers {
			return false, false
		}
		for i := 18; i < 25; i++ {
			if b[side][i] > 0 {
				return true, true
			}
		}
		return true, false
	}

	switch {
	case b.Checkers(0) == 0:
		g, bg := lost(1)
		p[OutputLoseGammon], p[OutputLoseBackgammon] = b2f(g), b2f(bg)
	case b.Checkers(1) == 0:
		p[OutputWin] = 1
		g, bg := lost(0)
		p[OutputWinGammon], p[OutputWinBackgammon] = b2f(g), b2f(bg)
	}
	return p
}

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// sanityCheck removes outcomes the position rules out and keeps each
// gammon and backgammon below its parent outcome.
func sanityCheck(b *Board, p *Probs) {
	var count, back [2]int
	for side := range b {
		for i, c := range b[side] {
			if c > 0 {
				back[side] = i
				count[side] += int(c)
			}
		}
	}
	contact := back[0]+back[1] >= 24

	if count[0] < bearoff.Checkers {
		p[OutputWinGammon], p[OutputWinBackgammon] = 0, 0
	} else if !contact && back[0] < 18 {
		p[OutputWinBackgammon] = 0
	}
	if count[1] < bearoff.Checkers {
		p[OutputLoseGammon], p[OutputLoseBackgammon] = 0, 0
	} else if !contact && back[1] < 18 {
		p[OutputLoseBackgammon] = 0
	}

	p[OutputWinGammon] = min(p[OutputWinGammon], p[OutputWin])
	p[OutputLoseGammon] = min(p[OutputLoseGammon], 1-p[OutputWin])
	p[OutputWinBackgammon] = min(p[OutputWinBackgammon], p[OutputWinGammon])
	p[OutputLoseBackgammon] = min(p[OutputLoseBackgammon], p[OutputLoseGammon])

	const noise = 1e-4
	for i := OutputWinGammon; i < NumOutputs; i++ {
		if p[i] < noise {
			p[i] = 0
		}
	}
}
