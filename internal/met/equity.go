package met

// State is a match score seen from X: away scores, the cube, and who owns
// it. Zero away scores mean a money game.
type State struct {
	XAway, OAway int
	Cube         int
	XOwns        bool
	Crawford     bool
}

// Money reports whether s is a money game.
func (s State) Money() bool { return s.XAway == 0 && s.OAway == 0 }

// CubeDead reports whether the cube holder cannot usefully redouble.
func (s State) CubeDead() bool {
	away := s.OAway
	if s.XOwns {
		away = s.XAway
	}
	return s.Cube != 1 && s.Cube >= away
}

// EqWhenWin is X's equity given that X wins, with gammon ratio gr and
// backgammon ratio bgr of those wins. Neither side may be at 1-away.
func (t *Table) EqWhenWin(gr, bgr float64, xAway, oAway, cube int) float64 {
	return (1-gr)*t.Value(xAway-cube, oAway) +
		gr*((1-bgr)*t.Value(xAway-2*cube, oAway)+bgr*t.Value(xAway-3*cube, oAway))
}

// EqWhenLose is X's equity given that O wins with gammon ratio gr and
// backgammon ratio bgr.
func (t *Table) EqWhenLose(gr, bgr float64, xAway, oAway, cube int) float64 {
	return (1-gr)*t.Value(xAway, oAway-cube) +
		gr*((1-bgr)*t.Value(xAway, oAway-2*cube)+bgr*t.Value(xAway, oAway-3*cube))
}

// EWhenWinPost is the post-Crawford equity of winning for the side needing
// away points.
func (t *Table) EWhenWinPost(gr, bgr float64, away, cube int) float64 {
	e1 := t.EPost(away - cube)
	e2 := t.EPost(away - 2*cube)
	e3 := t.EPost(away - 3*cube)
	return (1-gr)*e1 + gr*((1-bgr)*e2+bgr*e3)
}

// EWhenWin is EqWhenWin extended to post-Crawford scores.
func (t *Table) EWhenWin(gr, bgr float64, xAway, oAway, cube int) float64 {
	if xAway == 1 {
		return 1
	}
	if oAway == 1 {
		return t.EWhenWinPost(gr, bgr, xAway, cube)
	}
	return t.EqWhenWin(gr, bgr, xAway, oAway, cube)
}

// EWhenLose is EqWhenLose extended to post-Crawford scores.
func (t *Table) EWhenLose(gr, bgr float64, xAway, oAway, cube int) float64 {
	if oAway == 1 {
		return -1
	}
	if xAway == 1 {
		return -t.EWhenWinPost(gr, bgr, oAway, cube)
	}
	return t.EqWhenLose(gr, bgr, xAway, oAway, cube)
}

// GammonValues holds the weights the cubeless probabilities get in a
// normalized equity. X2 and X3 weigh X's gammons and backgammons, O2 and
// O3 the opponent's, all relative to a single game.
type GammonValues struct {
	X2, X3, O2, O3 float64
}

// MoneyGammonValues are the weights for a money game.
var MoneyGammonValues = GammonValues{X2: 1, X3: 1, O2: -1, O3: -1}

// GammonValues computes the weights at score s.
func (t *Table) GammonValues(s State) GammonValues {
	x, o, cube := s.XAway, s.OAway, s.Cube

	switch {
	case s.Money():
		return MoneyGammonValues
	case x == 1 && o == 1:
		return GammonValues{}
	case x == 1:
		p01 := 1 - t.ProbPost(o-cube)
		p02 := 1 - t.ProbPost(o-2*cube)
		p03 := 1 - t.ProbPost(o-3*cube)
		center := (1 + p01) / 2
		one := 1 - center
		cube2 := (p02 - center) / one
		cube3 := (p03 - center) / one
		return GammonValues{O2: cube2 + 1, O3: cube3 - cube2}
	case o == 1:
		p10 := t.ProbPost(x - cube)
		p20 := t.ProbPost(x - 2*cube)
		p30 := t.ProbPost(x - 3*cube)
		center := p10 / 2
		one := p10 - center
		cube2 := (p20 - center) / one
		cube3 := (p30 - center) / one
		return GammonValues{X2: cube2 - 1, X3: cube3 - cube2}
	}

	p10 := t.Prob(x-cube, o)
	p01 := t.Prob(x, o-cube)
	p20 := t.Prob(x-2*cube, o)
	p02 := t.Prob(x, o-2*cube)
	p30 := t.Prob(x-3*cube, o)
	p03 := t.Prob(x, o-3*cube)

	center := (p10 + p01) / 2
	one := p10 - center

	x2 := (p20 - center) / one
	o2 := (p02 - center) / one
	x3 := (p30 - center) / one
	o3 := (p03 - center) / one

	return GammonValues{X2: x2 - 1, X3: x3 - x2, O2: o2 + 1, O3: o3 - o2}
}

// Normalized is the cubeless equity of probabilities p, as
// win, win gammon, win backgammon, lose gammon, lose backgammon from the
// side to play. xOnPlay says whether that side is X.
func (g GammonValues) Normalized(p [5]float64, xOnPlay bool) float64 {
	e := 2*p[0] - 1
	if xOnPlay {
		return e + g.X2*p[1] + g.X3*p[2] + g.O2*p[3] + g.O3*p[4]
	}
	return e - (g.O2*p[1] + g.O3*p[2] + g.X2*p[3] + g.X3*p[4])
}
