package parameter

import "time"

const (
	AudioSampleRate = 44100
	AudioBufferSize = 100 * time.Millisecond
	AudioVolume     = 0.5
)

// Delivery chime, two notes a fourth apart
const (
	ChimeNote1Hz       = 987.77 // B5
	ChimeNote2Hz       = 1318.51
	ChimeNote1Duration = 80 * time.Millisecond
	ChimeNote2Duration = 220 * time.Millisecond
	ChimeAttack        = 5 * time.Millisecond
	ChimeNote1Release  = 30 * time.Millisecond
	ChimeNote2Release  = 180 * time.Millisecond
	ChimeFactionStep   = 4 // Semitones between successive factions
)

// Stuck kick thump
const (
	KickDuration = 60 * time.Millisecond
	KickAttack   = 2 * time.Millisecond
	KickRelease  = 45 * time.Millisecond
	KickVolume   = 0.3
)
