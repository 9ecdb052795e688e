package game

// SuccessMessages is the pool a winning session draws its message from.
var SuccessMessages = []string{
	"Blockbuster! You cracked the word!",
	"Industry hit! Puzzle solved!",
	"Whistles in the theatre, that was perfect!",
	"Box office record broken!",
	"Mass entry, class finish!",
	"Hundred days run guaranteed!",
	"That was a superstar performance!",
	"Interval bang! You nailed it!",
}

// RandomSuccessMessage draws one message uniformly from SuccessMessages.
func RandomSuccessMessage(choose Chooser) string {
	return randomFrom(SuccessMessages, choose)
}

func randomFrom(pool []string, choose Chooser) string {
	if len(pool) == 0 {
		return ""
	}
	if choose == nil {
		choose = DefaultChooser()
	}
	return pool[pick(choose, len(pool))]
}
