package engine

type diceMode int

const (
	diceNone diceMode = iota
	diceSaving
	diceRetrieving
)

// diceSeq is the record of one game's rolls.
type diceSeq struct {
	seed         uint64
	rolls        [][2]int
	cur          int
	synchronized bool
	semi         bool // first roll was semi-random and drew nothing
}

func newDiceSeq(rng *RNG) *diceSeq {
	return &diceSeq{seed: uint64(rng.Uint32()), synchronized: true}
}

func (s *diceSeq) roll(rng *RNG, counter *int) (int, int) {
	if s.cur == 0 && *counter > 0 {
		s.semi = true
		return semiRoll(counter)
	}
	return rng.RollDice()
}

func (s *diceSeq) add(d0, d1 int) {
	s.rolls = append(s.rolls[:s.cur], [2]int{d0, d1})
	s.cur++
}

func (s *diceSeq) get(rng *RNG) (int, int) {
	if s.cur < len(s.rolls) {
		r := s.rolls[s.cur]
		s.cur++
		return r[0], r[1]
	}

	if !s.synchronized {
		// replay the numbers the recorded rolls consumed
		rng.Seed(s.seed)
		n := 2 * len(s.rolls)
		if s.semi {
			n -= 2
		}
		for range n {
			rng.Uint32()
		}
		s.synchronized = true
	}
	d0, d1 := rng.RollDice()
	s.add(d0, d1)
	return d0, d1
}

func (s *diceSeq) start(rng *RNG) {
	s.cur = 0
	if len(s.rolls) == 0 {
		rng.Seed(s.seed)
		s.synchronized = true
	} else {
		s.synchronized = false
	}
}

// semiRoll derives a roll from the counter so that every block of 36
// games starts with each roll exactly once.
func semiRoll(counter *int) (int, int) {
	x := *counter % 36
	*counter--
	d0, d1 := 1+x/6, 1+x%6
	if d0 < d1 {
		d0, d1 = d1, d0
	}
	return d0, d1
}

// DiceGen hands out the rolls of a batch of rollout games. In saving mode
// every game's rolls are recorded so a later batch over a sibling position
// can replay them, and the first roll of each game is stratified over the
// 36 possibilities.
type DiceGen struct {
	rng     *RNG
	mode    diceMode
	seqs    []*diceSeq
	cur     int
	counter int
}

// NewDiceGen returns a generator drawing from rng.
func NewDiceGen(rng *RNG) *DiceGen {
	return &DiceGen{rng: rng}
}

// StartSave begins recording n games.
func (g *DiceGen) StartSave(n int) {
	g.seqs = make([]*diceSeq, n)
	for i := range g.seqs {
		g.seqs[i] = newDiceSeq(g.rng)
	}
	g.cur = 0
	g.mode = diceSaving
	g.counter = n - n%36
}

// StartRetrieve replays the recorded games from the first. If the first
// game recorded nothing, no game did, and recording continues instead.
func (g *DiceGen) StartRetrieve() {
	g.mode = diceRetrieving
	g.cur = 0
	if len(g.seqs) == 0 || len(g.seqs[0].rolls) == 0 {
		g.mode = diceSaving
		return
	}
	g.seqs[0].start(g.rng)
}

// Next moves on to the next game.
func (g *DiceGen) Next() {
	if g.mode == diceNone {
		g.cur = 0
		return
	}
	g.cur++
	g.seqs[g.cur].start(g.rng)
}

// EndSave stops recording. Afterwards only the first roll of each batch
// of n games is semi-random.
func (g *DiceGen) EndSave(n int) {
	g.counter = 0
	if n > 0 {
		g.counter = n - n%36
	}
	g.mode = diceNone
}

// Roll returns the next roll, higher die first.
func (g *DiceGen) Roll() (int, int) {
	switch g.mode {
	case diceSaving:
		s := g.seqs[g.cur]
		d0, d1 := s.roll(g.rng, &g.counter)
		s.add(d0, d1)
		return d0, d1
	case diceRetrieving:
		return g.seqs[g.cur].get(g.rng)
	}
	if g.cur == 0 && g.counter > 0 {
		g.cur = 1
		return semiRoll(&g.counter)
	}
	return g.rng.RollDice()
}

// CurNSeq returns the number of games of the current recording.
func (g *DiceGen) CurNSeq() int { return len(g.seqs) }

// CurSeed returns the seed of the current game.
func (g *DiceGen) CurSeed() uint64 {
	if g.cur >= len(g.seqs) {
		return 0
	}
	return g.seqs[g.cur].seed
}
