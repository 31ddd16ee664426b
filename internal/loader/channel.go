package loader

import "fmt"

// Channel is the release type attached to a published file.
type Channel string

const (
	Release Channel = "release"
	Beta    Channel = "beta"
	Alpha   Channel = "alpha"
)

// Channels returns every release channel, most stable first.
func Channels() []Channel {
	return []Channel{Release, Beta, Alpha}
}

// ParseChannel converts a channel name into a Channel.
func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown release channel %q (want release, beta or alpha)", s)
}

func (c Channel) String() string { return string(c) }
