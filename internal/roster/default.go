package roster

import "context"

// defaultTopics is the topic list offered when no roster file is configured.
var defaultTopics = []string{
	"The nature of justice",
	"Is technology making us wiser?",
	"What makes a life well lived?",
	"The limits of scientific knowledge",
	"Art, beauty and truth",
	"Power and responsibility",
}

var defaultParticipants = []Participant{
	{ID: "socrates", DisplayName: "Socrates", AvatarRef: "avatars/socrates.png", Role: "Philosopher", Description: "Athenian questioner who claimed to know nothing.", VoiceRef: "voices/socrates"},
	{ID: "ada-lovelace", DisplayName: "Ada Lovelace", AvatarRef: "avatars/ada-lovelace.png", Role: "Mathematician", Description: "Wrote the first published algorithm for a computing machine.", VoiceRef: "voices/ada-lovelace"},
	{ID: "confucius", DisplayName: "Confucius", AvatarRef: "avatars/confucius.png", Role: "Teacher", Description: "Chinese sage of ritual, virtue and government.", VoiceRef: "voices/confucius"},
	{ID: "marie-curie", DisplayName: "Marie Curie", AvatarRef: "avatars/marie-curie.png", Role: "Physicist", Description: "Pioneer of radioactivity research, twice a Nobel laureate.", VoiceRef: "voices/marie-curie"},
	{ID: "leonardo-da-vinci", DisplayName: "Leonardo da Vinci", AvatarRef: "avatars/leonardo.png", Role: "Polymath", Description: "Painter, engineer and tireless observer of nature.", VoiceRef: "voices/leonardo"},
	{ID: "frederick-douglass", DisplayName: "Frederick Douglass", AvatarRef: "avatars/douglass.png", Role: "Abolitionist", Description: "Orator and writer who escaped slavery.", VoiceRef: "voices/douglass"},
	{ID: "hypatia", DisplayName: "Hypatia", AvatarRef: "avatars/hypatia.png", Role: "Astronomer", Description: "Neoplatonist teacher of Alexandria.", VoiceRef: "voices/hypatia"},
	{ID: "albert-einstein", DisplayName: "Albert Einstein", AvatarRef: "avatars/einstein.png", Role: "Physicist", Description: "Author of the theories of relativity.", VoiceRef: "voices/einstein"},
}

// Default returns the built-in roster.
func Default() *Roster {
	r, err := New(defaultParticipants, defaultTopics)
	if err != nil {
		panic(err)
	}
	return r
}

type staticSource struct{ r *Roster }

// Static wraps an already built roster as a Source.
func Static(r *Roster) Source { return staticSource{r: r} }

func (s staticSource) Load(context.Context) (*Roster, error) {
	if s.r == nil {
		return nil, ErrEmptyRoster
	}
	return s.r, nil
}
