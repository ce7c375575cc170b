package mailscan

import (
	"context"
	"strconv"
	"strings"
)

// ScanState is the scanner's position in a scan.
type ScanState string

// ScanState constants. Complete and Failed are terminal for a scan.
const (
	StateIdle       ScanState = "idle"
	StateExtracting ScanState = "extracting"
	StateAnalyzing  ScanState = "analyzing"
	StateComplete   ScanState = "complete"
	StateFailed     ScanState = "failed"
)

// Status texts shown to the user.
const (
	StatusExtracting      = "Extracting email..."
	StatusAnalyzing       = "Analyzing patterns..."
	StatusComplete        = "Analysis Complete"
	StatusNoContent       = "Error: Open an email first!"
	StatusConnectionError = "Connection Error"
)

// Risk is the visual treatment applied to a verdict.
type Risk string

// Risk constants. There is no intermediate level.
const (
	RiskNone Risk = ""
	RiskSafe Risk = "safe"
	RiskHigh Risk = "high"
)

// Risk styling.
const (
	ColorHigh = "#ff4b4b"
	ColorSafe = "#28a745"

	IconHigh = "exclamation-triangle"
	IconSafe = "check-circle"

	LabelHigh = "HIGH RISK: SPAM"
	LabelSafe = "LOW RISK: SAFE"

	EvidencePrefix = "Suspicious terms found: "
)

// View is the render state of the popup. It holds everything needed to draw
// the status line, busy indicator, result panel, evidence panel and
// deep-dive panel.
type View struct {
	State      ScanState
	StatusText string
	Busy       bool

	// Result panel.
	ResultVisible bool
	Percentage    float64
	PercentText   string
	FillWidth     string
	Risk          Risk
	LabelText     string
	AccentColor   string
	Icon          string

	// Evidence panel.
	EvidenceVisible bool
	EvidenceTerms   string
	EvidenceText    string

	// Deep-dive panel.
	DeepDiveVisible bool
	Sentences       []string
}

// IdleView returns the view before any scan has been triggered.
func IdleView() View {
	return View{State: StateIdle}
}

// ExtractingView returns the view while the page is searched for content.
func ExtractingView() View {
	return View{State: StateExtracting, StatusText: StatusExtracting, Busy: true}
}

// AnalyzingView returns the view while the classifier is working.
func AnalyzingView() View {
	return View{State: StateAnalyzing, StatusText: StatusAnalyzing, Busy: true}
}

// NoContentView returns the view when no email body was found.
func NoContentView() View {
	return View{State: StateFailed, StatusText: StatusNoContent}
}

// ConnectionErrorView returns the view when classification failed.
func ConnectionErrorView() View {
	return View{State: StateFailed, StatusText: StatusConnectionError}
}

// CompleteView maps a classification response onto the result panels.
// The response must have an overall result.
func CompleteView(resp *AnalysisResponse) View {
	v := View{
		State:         StateComplete,
		StatusText:    StatusComplete,
		ResultVisible: true,
	}

	v.Percentage = Percentage(resp.OverallResult.Confidence)
	v.PercentText = FormatPercentage(resp.OverallResult.Confidence)
	v.FillWidth = v.PercentText

	if len(resp.HighlightedWords) > 0 {
		v.EvidenceVisible = true
		v.EvidenceTerms = strings.Join(resp.HighlightedWords, ", ")
		v.EvidenceText = EvidencePrefix + v.EvidenceTerms
	}

	// Always a fresh slice so items never carry over between scans.
	v.Sentences = make([]string, 0, len(resp.SuspiciousSentences))
	for _, s := range resp.SuspiciousSentences {
		v.Sentences = append(v.Sentences, s.Text)
	}
	v.DeepDiveVisible = len(v.Sentences) > 0

	if resp.OverallResult.IsSpam() {
		v.Risk, v.LabelText, v.AccentColor, v.Icon = RiskHigh, LabelHigh, ColorHigh, IconHigh
	} else {
		v.Risk, v.LabelText, v.AccentColor, v.Icon = RiskSafe, LabelSafe, ColorSafe, IconSafe
	}

	return v
}

// Percentage converts a confidence in [0,1] to a percentage rounded to two
// decimal places.
func Percentage(confidence float64) float64 {
	p, _ := strconv.ParseFloat(formatHundredths(confidence), 64)
	return p
}

// FormatPercentage renders a confidence as a percentage with exactly two
// decimal places, e.g. 0.97 becomes "97.00%".
func FormatPercentage(confidence float64) string {
	return formatHundredths(confidence) + "%"
}

func formatHundredths(confidence float64) string {
	return strconv.FormatFloat(confidence*100, 'f', 2, 64)
}

// Renderer applies a View to a UI surface.
type Renderer interface {
	Render(ctx context.Context, v View) error
}
