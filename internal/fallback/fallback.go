// Package fallback produces canned assistant replies for turns where no
// provider could answer. The chat endpoint always answers; these replies are
// the degraded tier of that guarantee.
package fallback

import "math/rand/v2"

// Guidance replies for turns that needed vision no remaining provider could
// supply: walk the user through describing the image, asking specific
// questions, or sharing any embedded text instead.
var guidanceReplies = []string{
	"I can see you've shared an image with me! 📸 I'm working on my vision capabilities. " +
		"In the meantime, I'd be happy to help if you could:\n\n" +
		"• **Describe the image** - Tell me what you see and I can discuss it\n" +
		"• **Ask specific questions** - What would you like to know about the image?\n" +
		"• **Share any text** - If there's text in the image, I can help analyze it\n\n" +
		"Is there anything else I can help you with? 😊",
	"I can see you've shared an image with me! 📸 I'm having trouble with my vision capabilities right now. " +
		"Could you:\n\n" +
		"• **Describe the image** - Tell me what you see and I can discuss it\n" +
		"• **Ask specific questions** - What would you like to know about the image?\n" +
		"• **Share any text** - If there's text in the image, I can help analyze it\n\n" +
		"Is there anything else I can help you with? 😊",
}

var imageReplies = []string{
	"I'm having trouble analyzing images right now. Could you try again or describe what you'd like to know about the image?",
	"Sorry, my vision capabilities are temporarily unavailable. Please try again in a moment.",
	"I can't process the image right now, but feel free to describe it and I'll help as best I can!",
}

var genericReplies = []string{
	"I'm having trouble connecting to my AI brain right now. Could you try again?",
	"Sorry, I'm experiencing some technical difficulties. Please try your message again.",
	"Oops! Something went wrong on my end. Mind giving it another shot?",
	"I'm having a momentary glitch. Could you please repeat that?",
}

// Responder selects one reply from a fixed set. The selection strategy is
// injectable so tests can pin it.
type Responder struct {
	pick func(n int) int
}

// New returns a Responder with randomized selection.
func New() *Responder {
	return &Responder{pick: rand.IntN}
}

// NewWithPicker returns a Responder using the given selection strategy.
// pick receives the set size and must return an index in [0, n).
func NewWithPicker(pick func(n int) int) *Responder {
	return &Responder{pick: pick}
}

// Respond returns one canned reply. When the failed turn involved an image
// the reply guides the user to describe it or ask specific questions
// instead; otherwise it is a generic ask-again message.
func (r *Responder) Respond(hadImage bool) string {
	set := genericReplies
	if hadImage {
		set = imageReplies
	}
	return set[r.pick(len(set))]
}

// Guidance returns one vision-guidance reply, for turns where the image
// itself could not be processed by any provider.
func (r *Responder) Guidance() string {
	return guidanceReplies[r.pick(len(guidanceReplies))]
}

// GuidanceReplies returns the vision-guidance reply set, for tests asserting
// membership.
func GuidanceReplies() []string {
	out := make([]string, len(guidanceReplies))
	copy(out, guidanceReplies)
	return out
}

// ImageReplies returns the image-turn reply set, for tests asserting
// membership.
func ImageReplies() []string {
	out := make([]string, len(imageReplies))
	copy(out, imageReplies)
	return out
}

// GenericReplies returns the text-turn reply set, for tests asserting
// membership.
func GenericReplies() []string {
	out := make([]string, len(genericReplies))
	copy(out, genericReplies)
	return out
}
