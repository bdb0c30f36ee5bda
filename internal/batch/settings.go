package batch

import (
	"fmt"
	"strings"
)

// Version is reported in the header line.
const Version = "1.92"

// Settings are the parameters a command file can change with s lines.
type Settings struct {
	Moves2PlyLimit int
	RolloutLimit   int
	RolloutGames   int
	CubeAway       int
	Include0Ply    bool
	EvalPlies      int
	Shortcuts      bool
	OSRGames       int
}

// DefaultSettings returns the settings of a run without flags.
func DefaultSettings() Settings {
	return Settings{
		Moves2PlyLimit: 20,
		RolloutLimit:   5,
		RolloutGames:   1296,
		CubeAway:       7,
		Include0Ply:    true,
		EvalPlies:      2,
		Shortcuts:      true,
		OSRGames:       1296,
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Header is the s line that opens every output.
func (s Settings) Header(weights string) string {
	return fmt.Sprintf("s version %s weights %s moves2plyLimit %d rolloutLimit %d nRollOutGames %d cubeAway %d include0Ply %d evalPlies %d shortCuts %d osrGames %d",
		Version, weights, s.Moves2PlyLimit, s.RolloutLimit, s.RolloutGames, s.CubeAway,
		b2i(s.Include0Ply), s.EvalPlies, b2i(s.Shortcuts), s.OSRGames)
}

// set applies one key. applied is false for keys that are accepted but
// ignored.
func (s *Settings) set(key, value string) (applied bool, err error) {
	switch key {
	case "version", "weights":
		return false, nil
	case "moves2plyLimit":
		s.Moves2PlyLimit = atoi(value)
	case "rolloutLimit":
		s.RolloutLimit = atoi(value)
	case "nRollOutGames":
		s.RolloutGames = atoi(value)
	case "cubeAway":
		s.CubeAway = atoi(value)
	case "include0Ply":
		s.Include0Ply = atoi(value) != 0
	case "evalPlies":
		s.EvalPlies = atoi(value)
	case "shortCuts":
		s.Shortcuts = atoi(value) != 0
	case "osrGames":
		s.OSRGames = atoi(value)
	default:
		return false, &FatalError{Msg: "Unknown option " + key}
	}
	return true, nil
}

// apply sets every key/value pair of args. A trailing key without a value
// is ignored. It returns the echo of the applied pairs and whether
// shortCuts was among them.
func (s *Settings) apply(args []string) (echo string, shortcuts bool, err error) {
	var b strings.Builder
	b.WriteString("s")
	for i := 0; i+1 < len(args); i += 2 {
		applied, err := s.set(args[i], args[i+1])
		if err != nil {
			return "", false, err
		}
		if applied {
			fmt.Fprintf(&b, " %s %s", args[i], args[i+1])
			shortcuts = shortcuts || args[i] == "shortCuts"
		}
	}
	return b.String(), shortcuts, nil
}
