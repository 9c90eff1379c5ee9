package core

// HighlightKind is the outcome of a highlight decision for an NPC.
type HighlightKind string

const (
	HighlightNone    HighlightKind = "none"
	HighlightCorrect HighlightKind = "correct"
	HighlightWrong   HighlightKind = "wrong"
)

// fillAlpha is the alpha used for the translucent hull fill.
const fillAlpha = 30

// HighlightOptions are the display toggles and colours from Settings.
type HighlightOptions struct {
	Correct      bool
	Wrong        bool
	CorrectColor RGBA
	WrongColor   RGBA
}

// HighlightDecision says how an observed NPC should be drawn.
type HighlightDecision struct {
	NPC    string        `json:"npc"`
	Master Master        `json:"master,omitempty"`
	Kind   HighlightKind `json:"kind"`
	Color  RGBA          `json:"color"`
	Fill   RGBA          `json:"fill"`
}

// Highlight decides whether npcName should be drawn as the correct master,
// a wrong master, or not at all. NPCs that are not masters are never highlighted.
func Highlight(npcName string, target Master, opts HighlightOptions) HighlightDecision {
	out := HighlightDecision{NPC: npcName, Kind: HighlightNone}
	m, ok := MasterFromNPCName(npcName)
	if !ok {
		return out
	}
	out.Master = m
	switch {
	case m == target && opts.Correct:
		out.Kind = HighlightCorrect
		out.Color = opts.CorrectColor
	case m != target && opts.Wrong:
		out.Kind = HighlightWrong
		out.Color = opts.WrongColor
	default:
		return out
	}
	out.Fill = out.Color.WithAlpha(fillAlpha)
	return out
}
