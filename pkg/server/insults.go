package server

import "math/rand/v2"

var insults = []string{
	"You're like a cloud... always disappearing when I need shade.",
	"You bring everyone so much joy... when you leave the room.",
	"Your secrets are safe with me. I never even listen when you tell me them.",
	"You're proof that even mistakes can be endearing.",
	"You're as useful as a screen door on a submarine.",
	"You're like a broken pencil... pointless.",
	"Your jokes make crickets embarrassed to chirp.",
	"Your brain cells must have gone on vacation... permanently.",
	"You're the human equivalent of a participation trophy.",
	"You have something on your chin... no, the third one down.",
}

// RandomInsult picks one insult uniformly from the built-in list
func RandomInsult() string {
	return insults[rand.IntN(len(insults))]
}
