package tui

type View int

const (
	ViewCompose View = iota
	ViewResults
	ViewRaw
)

func (v View) String() string {
	switch v {
	case ViewCompose:
		return "compose"
	case ViewResults:
		return "results"
	case ViewRaw:
		return "raw"
	default:
		return "unknown"
	}
}
