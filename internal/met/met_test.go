package met

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func TestDefaultTable(t *testing.T) {
	table := Default()

	tests := []struct {
		name   string
		a1, a2 int
		want   float64
	}{
		{"1-away 1-away", 1, 1, 0.5},
		{"Snowie block", 2, 1, 0.315},
		{"Snowie block upper", 1, 2, 0.685},
		{"mec26 outside Snowie", 20, 20, 0.5},
		{"mec26 edge", 16, 1, 0.008},
		{"already won", 0, 3, 1},
		{"already lost", 3, -1, 0},
		{"clamped to table", 30, 30, 0.5},
	}
	for _, tc := range tests {
		if got := table.Prob(tc.a1, tc.a2); math.Abs(got-tc.want) > eps {
			t.Errorf("%s: Prob(%d, %d) = %f, want %f", tc.name, tc.a1, tc.a2, got, tc.want)
		}
	}
}

func TestTableComplement(t *testing.T) {
	table := Default()
	for i := 1; i <= MaxAway; i++ {
		for j := 1; j <= MaxAway; j++ {
			if s := table.Prob(i, j) + table.Prob(j, i); math.Abs(s-1) > 1e-6 {
				t.Fatalf("Prob(%d,%d)+Prob(%d,%d) = %f", i, j, j, i, s)
			}
		}
	}
}

func TestPostCrawford(t *testing.T) {
	table := Default()
	if got := table.ProbPost(1); got != 0.5 {
		t.Errorf("ProbPost(1) = %f, want 0.5", got)
	}
	if got := table.ProbPost(0); got != 1 {
		t.Errorf("ProbPost(0) = %f, want 1", got)
	}
	if got := table.EPost(2); math.Abs(got-(2*0.484988779204-1)) > eps {
		t.Errorf("EPost(2) = %f", got)
	}
	if got := table.ProbCrawford(1, 3, false); math.Abs(got-(1-0.3195)) > eps {
		t.Errorf("ProbCrawford(1, 3) = %f", got)
	}
	if got := table.ProbCrawford(1, 3, true); got != table.Prob(1, 3) {
		t.Errorf("Crawford game should read the pre-Crawford table, got %f", got)
	}
}

func TestCubeDead(t *testing.T) {
	tests := []struct {
		s    State
		want bool
	}{
		{State{XAway: 7, OAway: 7, Cube: 1}, false},
		{State{XAway: 3, OAway: 5, Cube: 4, XOwns: true}, true},
		{State{XAway: 3, OAway: 5, Cube: 4, XOwns: false}, false},
		{State{XAway: 7, OAway: 2, Cube: 2, XOwns: false}, true},
	}
	for _, tc := range tests {
		if got := tc.s.CubeDead(); got != tc.want {
			t.Errorf("%+v CubeDead() = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestWindowsCentered(t *testing.T) {
	table := Default()
	now, doubled := table.Windows(7, 7, 1, 0.25, 0.25)

	if math.Abs(now.YLow-table.Value(7, 6)) > eps || math.Abs(now.YHigh-table.Value(6, 7)) > eps {
		t.Errorf("window ends should be the drop values, got %+v", now)
	}
	if now.XLow < 0.2 || now.XLow > 0.3 {
		t.Errorf("take point at 7-away = %f, want about 0.26", now.XLow)
	}
	if math.Abs(now.XLow+now.XHigh-1) > 1e-6 {
		t.Errorf("symmetric score should give a symmetric window, got %+v", now)
	}
	if doubled.XHigh != 1 {
		t.Errorf("X can always play on for the win once O owns the cube, got %+v", doubled)
	}
}

func TestWindowsOwned(t *testing.T) {
	table := Default()

	now, doubled := table.Windows(7, 7, 2, 0.25, 0.25)
	if now.XLow != 0 {
		t.Errorf("owned cube window starts at 0, got %+v", now)
	}
	if now.XHigh >= 1 || now.XHigh < 0.5 {
		t.Errorf("cash point %f out of range", now.XHigh)
	}
	if doubled.XLow <= 0 {
		t.Errorf("doubled window should have a drop point, got %+v", doubled)
	}

	// cube dead for X at 2-away holding 2
	now, _ = table.Windows(2, 5, 2, 0.25, 0.25)
	if now.XHigh != 1 || now.YHigh != 1 {
		t.Errorf("dead cube should run to a certain win, got %+v", now)
	}
}

func TestWindowsPostCrawford(t *testing.T) {
	table := Default()

	now, _ := table.Windows(1, 1, 1, 0.2, 0.2)
	if now != (Window{XLow: 0, YLow: -1, XHigh: 1, YHigh: 1}) {
		t.Errorf("DMP window = %+v", now)
	}

	trailer, _ := table.Windows(4, 1, 1, 0.2, 0.2)
	leader, _ := table.Windows(1, 4, 1, 0.2, 0.2)
	if math.Abs(leader.XLow-(1-trailer.XHigh)) > eps || math.Abs(leader.YLow+trailer.YHigh) > eps {
		t.Errorf("leader window should mirror the trailer's: %+v vs %+v", leader, trailer)
	}
}

func TestWindowFunctions(t *testing.T) {
	w := Window{XLow: 0.2, YLow: -0.5, XHigh: 0.8, YHigh: 0.5}

	if got := w.Y(0.5); math.Abs(got) > eps {
		t.Errorf("Y(0.5) = %f", got)
	}
	if got := w.X(0); math.Abs(got-0.5) > eps {
		t.Errorf("X(0) = %f", got)
	}
	if w.E(0.1) != -0.5 || w.E(0.9) != 0.5 {
		t.Errorf("E should clamp outside the window")
	}
	rr := w.Reverse().Reverse()
	if math.Abs(rr.XLow-w.XLow) > eps || math.Abs(rr.XHigh-w.XHigh) > eps ||
		math.Abs(rr.YLow-w.YLow) > eps || math.Abs(rr.YHigh-w.YHigh) > eps {
		t.Errorf("double Reverse = %+v, want %+v", rr, w)
	}
}

func TestGammonValues(t *testing.T) {
	table := Default()
	p := [5]float64{0.6, 0.2, 0.05, 0.1, 0.01}
	money := 2*p[0] - 1 + p[1] + p[2] - p[3] - p[4]

	gv := table.GammonValues(State{})
	if gv != MoneyGammonValues {
		t.Errorf("money gammon values = %+v", gv)
	}
	for _, xOnPlay := range []bool{true, false} {
		if got := gv.Normalized(p, xOnPlay); math.Abs(got-money) > eps {
			t.Errorf("money Normalized(xOnPlay=%v) = %f, want %f", xOnPlay, got, money)
		}
	}

	// DMP: gammons are worthless
	gv = table.GammonValues(State{XAway: 1, OAway: 1, Cube: 1})
	if got := gv.Normalized(p, true); math.Abs(got-0.2) > eps {
		t.Errorf("DMP Normalized = %f, want 0.2", got)
	}

	// at a symmetric score both sides value gammons the same
	gv = table.GammonValues(State{XAway: 7, OAway: 7, Cube: 1})
	if math.Abs(gv.X2+gv.O2) > 1e-6 || gv.X2 <= 0 {
		t.Errorf("7-away gammon values = %+v", gv)
	}
}

func TestParseXML(t *testing.T) {
	doc := `<met>
  <info><name>Test</name><length>2</length></info>
  <pre-crawford-table type="explicit">
    <row><me>0.5</me><me>0.7</me></row>
    <row><me>0.3</me><me>0.5</me></row>
  </pre-crawford-table>
  <post-crawford-table player="both" type="explicit">
    <row><me>0.5</me><me>0.49</me></row>
  </post-crawford-table>
</met>`
	table, err := ParseXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}
	if table.Name != "Test" {
		t.Errorf("Name = %q", table.Name)
	}
	if table.Prob(1, 2) != 0.7 || table.Prob(2, 1) != 0.3 {
		t.Errorf("pre-Crawford values not read: %f %f", table.Prob(1, 2), table.Prob(2, 1))
	}
	if table.ProbPost(2) != 0.49 {
		t.Errorf("post-Crawford value not read: %f", table.ProbPost(2))
	}
	if table.Prob(10, 10) != 0.5 {
		t.Errorf("uncovered scores should keep defaults")
	}

	if _, err := ParseXML(strings.NewReader("<met><pre-crawford-table><row><me>x</me></row></pre-crawford-table></met>")); err == nil {
		t.Error("bad value should fail")
	}
}

func TestLoadXMLFile(t *testing.T) {
	table, err := LoadXML("../../data/g11.xml")
	if err != nil {
		t.Skipf("MET file not found: %v", err)
	}
	if p := table.Prob(1, 1); math.Abs(p-0.5) > 0.01 {
		t.Errorf("Prob(1,1) = %f", p)
	}
}
