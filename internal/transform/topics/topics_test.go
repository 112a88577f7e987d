// internal/transform/topics/topics_test.go
package topics

import (
	"math/rand"
	"strings"
	"testing"

	"niche-proxy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEnricher(seed int64) *Enricher {
	return NewEnricherWithRand(rand.New(rand.NewSource(seed)))
}

func TestTopicsFor_ReturnsThree(t *testing.T) {
	e := seededEnricher(1)

	names := []string{
		"Mobile Gaming",
		"Online Courses",
		"Tech Reviews",
		"Makeup Reviews",
		"Completely Unrelated Thing",
		"",
	}
	for _, name := range names {
		topics := e.TopicsFor(name)
		assert.Len(t, topics, 3, "name %q", name)
	}
}

func TestTopicsFor_KeywordMatch(t *testing.T) {
	e := seededEnricher(42)

	// Collect across many draws; every topic must come from the gaming
	// or mobile families or the name-specific templates.
	allowed := make(map[string]bool)
	for _, topic := range topicMap["gaming"] {
		allowed[topic] = true
	}
	for _, topic := range topicMap["mobile"] {
		allowed[topic] = true
	}

	for i := 0; i < 20; i++ {
		for _, topic := range e.TopicsFor("Mobile Gaming") {
			if strings.Contains(topic, "Mobile Gaming") {
				continue // name-specific template
			}
			assert.True(t, allowed[topic], "unexpected topic %q", topic)
		}
	}
}

func TestTopicsFor_SubstringFallback(t *testing.T) {
	e := seededEnricher(7)

	// "Speedrunning" has no keyword token but contains no family
	// substring either, so it draws from the generic list.
	allowed := make(map[string]bool)
	for _, topic := range genericTopics {
		allowed[topic] = true
	}

	for i := 0; i < 20; i++ {
		for _, topic := range e.TopicsFor("Speedrunning") {
			if strings.Contains(topic, "Speedrunning") {
				continue
			}
			assert.True(t, allowed[topic], "unexpected topic %q", topic)
		}
	}
}

func TestTopicsFor_DeterministicWithFixedSeed(t *testing.T) {
	first := seededEnricher(99).TopicsFor("Indie Games")
	second := seededEnricher(99).TopicsFor("Indie Games")
	assert.Equal(t, first, second)
}

func TestChannelsFor_DistinctNames(t *testing.T) {
	e := seededEnricher(3)

	for i := 0; i < 50; i++ {
		channels := e.ChannelsFor("Mobile Gaming", nil, "Gaming")
		require.Len(t, channels, 2)
		assert.NotEqual(t, channels[0].Name, channels[1].Name)
	}
}

func TestChannelsFor_SubscriberRanges(t *testing.T) {
	e := seededEnricher(5)

	for i := 0; i < 50; i++ {
		channels := e.ChannelsFor("Indie Games", nil, "Gaming")
		assert.GreaterOrEqual(t, channels[0].Subs, int64(1_000_000))
		assert.Less(t, channels[0].Subs, int64(5_000_000))
		assert.GreaterOrEqual(t, channels[1].Subs, int64(500_000))
		assert.Less(t, channels[1].Subs, int64(2_500_000))
	}
}

func TestChannelsFor_BorrowsOriginalSubs(t *testing.T) {
	e := seededEnricher(11)

	original := []models.Channel{
		{Name: "UpstreamOne", Subs: 1_234_567},
		{Name: "UpstreamTwo", Subs: 890_123},
	}
	channels := e.ChannelsFor("Game Development", original, "Gaming")

	assert.Equal(t, int64(1_234_567), channels[0].Subs)
	assert.Equal(t, int64(890_123), channels[1].Subs)
	// Names are regenerated even when counts are borrowed.
	assert.NotEqual(t, "UpstreamOne", channels[0].Name)
}

func TestChannelNameOptions(t *testing.T) {
	options := channelNameOptions("Mobile Gaming", "Gaming")

	assert.Contains(t, options, "MobileHub")
	assert.Contains(t, options, "TheMobileGaming")
	assert.Contains(t, options, "MobileGames")
	assert.Contains(t, options, "MobilePlayer")

	// Short names still produce usable options.
	assert.NotEmpty(t, channelNameOptions("ab", ""))
}
