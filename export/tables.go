package export

const (
	VectorLen  = 10
	TextCap    = 21
	MaxTextLen = TextCap - 1
)

var values = [VectorLen]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

var messages = [...]string{
	"Bella",
	"Test",
	"Pippo",
	"Pluto",
	"42",
	"AnswerToTheUniverse",
	"E tutto il resto...",
}

// Values returns a copy of the numeric table.
func Values() [VectorLen]float32 {
	return values
}

// Messages returns a copy of the text table.
func Messages() []string {
	out := make([]string, len(messages))
	copy(out, messages[:])
	return out
}
