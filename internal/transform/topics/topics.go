// Package topics enriches generated niches with trending topics and
// plausible top-channel entries. Output is randomized for display
// variety; it never feeds back into relevance scoring.
package topics

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"niche-proxy/internal/models"
)

// topicMap maps niche-name keywords to canned trending-topic lists.
var topicMap = map[string][]string{
	// Gaming
	"game": {
		"Game development tutorials",
		"Mobile gaming optimization",
		"Indie game showcases",
		"Gaming tips and tricks",
		"Speedrunning strategies",
		"Game easter eggs",
		"Modding communities",
		"Gaming hardware reviews",
		"Game design principles",
		"Early access previews",
	},
	"gaming": {
		"Live streaming best practices",
		"Gaming setup tutorials",
		"Game mechanics explained",
		"Let's play series",
		"Gaming performance tips",
		"Mobile gaming optimization",
		"Gaming community building",
		"Competitive gaming strategies",
		"Game soundtrack analysis",
		"Gaming industry trends",
	},
	"mobile": {
		"Mobile performance optimization",
		"Touch control strategies",
		"Mobile game monetization",
		"Battery saving techniques",
		"Cross-platform mobile gaming",
		"Mobile esports",
		"Mobile game development",
		"Screen recording tutorials",
		"Mobile game communities",
		"Cloud gaming on mobile",
	},
	"fps": {
		"Aim training techniques",
		"Weapon selection guides",
		"Map strategies",
		"Team coordination tips",
		"FPS settings optimization",
		"Pro player setups",
		"Tournament coverage",
		"Reaction time improvement",
		"Mouse sensitivity guides",
		"Visual awareness training",
	},
	"rpg": {
		"Character building guides",
		"Quest walkthroughs",
		"Lore deep dives",
		"Class optimization",
		"RPG storytelling analysis",
		"Item farming strategies",
		"Mod recommendations",
		"Roleplay techniques",
		"Dialogue choices impact",
		"Game world exploration",
	},
	"strategy": {
		"Build order guides",
		"Economic management",
		"Map control tactics",
		"Unit counters",
		"Tech tree optimization",
		"Competitive strategies",
		"Micro techniques",
		"Campaign walkthroughs",
		"Multi-tasking methods",
		"Advanced tactics showcases",
	},

	// Tech
	"tech": {
		"Latest gadget reviews",
		"Technology comparisons",
		"Tech industry news",
		"Future technology predictions",
		"Tech setup guides",
		"Software optimization tips",
		"Emerging technology trends",
		"Tech troubleshooting",
		"Budget tech recommendations",
		"Enterprise technology solutions",
	},
	"coding": {
		"Programming language basics",
		"Coding project tutorials",
		"Software architecture patterns",
		"Code optimization techniques",
		"Debugging strategies",
		"Framework comparisons",
		"DevOps practices",
		"Version control workflows",
		"Test-driven development",
		"API integration guides",
	},
	"programming": {
		"Algorithm explanations",
		"Data structure tutorials",
		"Programming challenge solutions",
		"Coding interview prep",
		"Software design patterns",
		"Language-specific best practices",
		"Full-stack development",
		"Code review techniques",
		"Open source contribution guides",
		"Database optimization",
	},

	// Education
	"education": {
		"Study techniques",
		"Learning resource reviews",
		"Educational technology tools",
		"Teaching methodologies",
		"Curriculum development",
		"Student engagement strategies",
		"Academic research explanations",
		"Classroom management",
		"Educational psychology",
		"Distance learning tips",
	},
	"tutorial": {
		"Step-by-step guides",
		"Beginner-friendly explanations",
		"Software walkthroughs",
		"Hands-on demonstrations",
		"Skill-building exercises",
		"Common mistake corrections",
		"Advanced technique breakdowns",
		"Tool comparison guides",
		"Process optimization tips",
		"Quick start guides",
	},
	"course": {
		"Course creation platforms",
		"Curriculum design tips",
		"Student engagement strategies",
		"Online teaching tools",
		"Assessment techniques",
		"Interactive learning methods",
		"Course marketing strategies",
		"Student success stories",
		"Certification pathways",
		"Learning management systems",
	},

	// Style and beauty
	"beauty": {
		"Seasonal makeup trends",
		"Product reviews and swatches",
		"Skincare routines",
		"Makeup techniques for beginners",
		"Natural beauty tips",
		"Product dupes and comparisons",
		"Ethical beauty brands",
		"DIY beauty products",
		"Makeup for different skin types",
		"Celebrity inspired looks",
	},
	"makeup": {
		"Eyeshadow placement techniques",
		"Foundation matching guides",
		"Contouring and highlighting",
		"Makeup for different occasions",
		"Makeup brush types and uses",
		"Long-lasting makeup tips",
		"Waterproof makeup techniques",
		"Color theory for makeup",
		"Quick makeup routines",
		"Editorial makeup inspiration",
	},
	"fashion": {
		"Seasonal fashion trends",
		"Capsule wardrobe building",
		"Style for different body types",
		"Sustainable fashion brands",
		"Outfit layering techniques",
		"Color coordination guides",
		"Fashion history lessons",
		"Accessory styling tips",
		"Fashion week coverage",
		"Budget styling ideas",
	},
	"style": {
		"Personal style development",
		"Trend forecasting",
		"Signature look creation",
		"Style evolution guides",
		"Minimalist wardrobe tips",
		"Occasion-based styling",
		"Vintage style inspiration",
		"Contemporary style trends",
		"Style icon analysis",
		"Styling challenges",
	},
}

var genericTopics = []string{
	"Content creation tips",
	"Audience growth strategies",
	"Engagement techniques",
	"Trending video formats",
	"Social media optimization",
	"Community building strategies",
	"Platform-specific best practices",
	"Analytics and performance tracking",
	"Monetization strategies",
	"Cross-platform content repurposing",
}

// categorySuffixes extend the channel-name templates per category.
var categorySuffixes = map[string][]string{
	"Gaming":               {"Games", "Player"},
	"Education":            {"Learning", "Classroom"},
	"Entertainment":        {"Shows", "Studio"},
	"Howto & Style":        {"Style", "Studio"},
	"Science & Technology": {"Tech", "Labs"},
}

// Enricher owns the random source used for topic shuffling and channel
// synthesis. The rand.Rand is not safe for concurrent use, so a mutex
// guards it.
type Enricher struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEnricher creates a time-seeded enricher.
func NewEnricher() *Enricher {
	return NewEnricherWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEnricherWithRand creates an enricher over a caller-provided
// source. Tests pass a fixed seed for determinism.
func NewEnricherWithRand(rng *rand.Rand) *Enricher {
	return &Enricher{rng: rng}
}

// TopicsFor returns three trending topics for a niche name: keyword
// matches from the topic table merged with name-specific templates,
// shuffled.
func (e *Enricher) TopicsFor(name string) []string {
	nameLower := strings.ToLower(name)
	words := strings.Fields(nameLower)

	var matching []string
	for _, word := range words {
		if topics, ok := topicMap[word]; ok {
			matching = append(matching, topics...)
		}
	}

	// No keyword hit: try broad substring families before the generic
	// list.
	if len(matching) == 0 {
		switch {
		case strings.Contains(nameLower, "game") || strings.Contains(nameLower, "gaming"):
			matching = append(matching, topicMap["gaming"]...)
		case strings.Contains(nameLower, "tech") || strings.Contains(nameLower, "coding") ||
			strings.Contains(nameLower, "software") || strings.Contains(nameLower, "app"):
			matching = append(matching, topicMap["tech"]...)
		case strings.Contains(nameLower, "education") || strings.Contains(nameLower, "tutorial") ||
			strings.Contains(nameLower, "course") || strings.Contains(nameLower, "learn"):
			matching = append(matching, topicMap["education"]...)
		case strings.Contains(nameLower, "beauty") || strings.Contains(nameLower, "makeup") ||
			strings.Contains(nameLower, "fashion") || strings.Contains(nameLower, "style"):
			matching = append(matching, topicMap["style"]...)
		default:
			matching = append(matching, genericTopics...)
		}
	}

	matching = dedupe(matching)

	nicheSpecific := []string{
		name + " for beginners",
		"Advanced " + name + " techniques",
		name + " community highlights",
		"Trending " + name + " content",
		name + " case studies",
	}

	all := append(nicheSpecific, matching...)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	if len(all) > 3 {
		all = all[:3]
	}
	return all
}

// ChannelsFor returns two channels with names templated from the
// niche, distinct whenever at least two distinct templates exist.
// Subscriber counts come from the original niche when present,
// otherwise from randomized ranges (the first channel skews larger).
func (e *Enricher) ChannelsFor(name string, original []models.Channel, category string) []models.Channel {
	options := channelNameOptions(name, category)

	e.mu.Lock()
	defer e.mu.Unlock()

	channels := make([]models.Channel, 0, 2)
	for i := 0; i < 2; i++ {
		var subs int64
		if i < len(original) && original[i].Subs > 0 {
			subs = original[i].Subs
		} else if i == 0 {
			subs = 1_000_000 + e.rng.Int63n(4_000_000)
		} else {
			subs = 500_000 + e.rng.Int63n(2_000_000)
		}

		channels = append(channels, models.Channel{
			Name: options[e.rng.Intn(len(options))],
			Subs: subs,
		})
	}

	if channels[0].Name == channels[1].Name && len(options) > 1 {
		idx := indexOf(options, channels[0].Name)
		channels[1].Name = options[(idx+1)%len(options)]
	}

	return channels
}

// channelNameOptions builds name templates from the niche's longer
// words plus category suffixes. Always returns at least one option.
func channelNameOptions(name, category string) []string {
	var firstWord string
	for _, word := range strings.Fields(name) {
		if len(word) > 3 {
			firstWord = word
			break
		}
	}
	compact := strings.ReplaceAll(name, " ", "")

	candidates := []string{
		firstWord + "Hub",
		firstWord + "Channel",
		"The" + compact,
		compact + "Pro",
		firstWord + "Expert",
		firstWord + "Academy",
		firstWord + "World",
		firstWord + "TV",
		firstWord + "Official",
		compact + "Guide",
	}
	for _, suffix := range categorySuffixes[category] {
		candidates = append(candidates, firstWord+suffix)
	}

	options := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) > 3 {
			options = append(options, c)
		}
	}
	if len(options) == 0 {
		options = []string{"CreatorChannel"}
	}
	return dedupe(options)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return 0
}
