package met

// Window is a market window: equity as a straight line in winning
// probability, from the drop point (XLow,YLow) to the cash point
// (XHigh,YHigh). Equities are match equities in [-1,1].
type Window struct {
	XLow, YLow   float64
	XHigh, YHigh float64
}

// Y is the equity at probability x inside the window.
func (w Window) Y(x float64) float64 {
	return w.YLow + (w.YHigh-w.YLow)/(w.XHigh-w.XLow)*(x-w.XLow)
}

// X is the probability at which the equity is y.
func (w Window) X(y float64) float64 {
	return w.XLow + (y-w.YLow)*((w.XHigh-w.XLow)/(w.YHigh-w.YLow))
}

// E is Y clamped to the window's end points.
func (w Window) E(x float64) float64 {
	if x <= w.XLow {
		return w.YLow
	}
	if x >= w.XHigh {
		return w.YHigh
	}
	return w.Y(x)
}

// Reverse returns the window seen by the other side.
func (w Window) Reverse() Window {
	return Window{XLow: 1 - w.XHigh, YLow: -w.YHigh, XHigh: 1 - w.XLow, YHigh: -w.YLow}
}

// Windows returns the market windows of the side to play (X) at the
// current cube and after a double. xAway and oAway are the away scores,
// cube the cube value (X owns it when above 1). xgr and ogr are the gammon
// ratios of each side's wins. A side at 1-away means post-Crawford.
func (t *Table) Windows(xAway, oAway, cube int, xgr, ogr float64) (now, doubled Window) {
	if xAway > 1 && oAway > 1 {
		return t.pre(xAway, oAway, cube, true, xgr, ogr)
	}

	if xAway == 1 && oAway == 1 {
		now = Window{XLow: 0, YLow: -1, XHigh: 1, YHigh: 1}
		return now, now
	}

	if cube == 1 {
		away, gr := xAway, xgr
		if xAway == 1 {
			away, gr = oAway, ogr
		}
		now = Window{XLow: 0, YLow: -1, XHigh: 1, YHigh: t.EWhenWinPost(gr, 0, away, 2*cube)}
		odrop := t.EPost(away - cube)
		xh := now.X(odrop)
		doubled = now
		now.XHigh, now.YHigh = xh, odrop
		if xAway == 1 {
			now, doubled = now.Reverse(), doubled.Reverse()
		}
		return now, doubled
	}

	if oAway == 1 {
		now = Window{XLow: 0, YLow: -1, XHigh: 1, YHigh: t.EWhenWinPost(xgr, 0, xAway, 2*cube)}
		return now, now
	}
	now = Window{XLow: 0, YLow: -t.EWhenWinPost(ogr, 0, oAway, cube), XHigh: 1, YHigh: 1}
	doubled = now
	doubled.YLow = -t.EWhenWinPost(ogr, 0, oAway, 4*cube)
	return now, doubled
}

// pre handles scores where neither side is at 1-away. xOwns says who holds
// a cube above 1.
func (t *Table) pre(xAway, oAway, cube int, xOwns bool, xgr, ogr float64) (now, doubled Window) {
	if cube == 1 {
		// X equity at twice the cube after O doubles...
		now, _ = t.pre(xAway, oAway, 2*cube, true, xgr, ogr)
		xdrop := t.Value(xAway, oAway-cube)
		xl := now.X(xdrop)

		// ...and after X doubles.
		now, _ = t.pre(xAway, oAway, 2*cube, false, xgr, ogr)
		odrop := t.Value(xAway-cube, oAway)
		xh := now.X(odrop)

		doubled = now
		return Window{XLow: xl, YLow: xdrop, XHigh: xh, YHigh: odrop}, doubled
	}

	if xOwns {
		if xAway <= cube {
			// dead cube
			now.XHigh, now.YHigh = 1, 1
			doubled = Window{XLow: 0, YLow: t.EqWhenLose(ogr, 0, xAway, oAway, 4*cube), XHigh: 1, YHigh: 1}
		} else {
			now, _ = t.pre(xAway, oAway, 2*cube, !xOwns, xgr, ogr)
			edrop := t.Value(xAway-cube, oAway)
			rdp := now.X(edrop)
			doubled = now
			now.XHigh, now.YHigh = rdp, edrop
		}
		now.XLow, now.YLow = 0, t.EqWhenLose(ogr, 0, xAway, oAway, cube)
		return now, doubled
	}

	if oAway <= cube {
		now.XLow, now.YLow = 0, -1
		doubled = Window{XLow: 0, YLow: -1, XHigh: 1, YHigh: t.EqWhenWin(xgr, 0, xAway, oAway, 4*cube)}
	} else {
		now, _ = t.pre(xAway, oAway, 2*cube, !xOwns, xgr, ogr)
		edrop := t.Value(xAway, oAway-cube)
		rdp := now.X(edrop)
		doubled = now
		now.XLow, now.YLow = rdp, edrop
	}
	now.XHigh, now.YHigh = 1, t.EqWhenWin(xgr, 0, xAway, oAway, cube)
	return now, doubled
}
