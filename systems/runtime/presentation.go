package runtime

import (
	"sort"
	"strings"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
)

const (
	chatRoleAssistant = "assistant"
	chatRoleUser      = "user"

	defaultMaxMessages = 4
	batteryLowLevel    = 20
	temperatureHot     = 75
	temperatureCold    = 25
)

// PresentationState is everything presentation is computed from.
type PresentationState struct {
	Mood                enums.Mood
	BaseMood            enums.Mood
	Brightness          float64
	Dimmed              bool
	Asleep              bool
	AnimationsPaused    bool
	Temperature         *float64
	WindSpeed           *float64
	Precipitation       *float64
	Battery             *float64
	Charging            *bool
	BatteryStateEnabled bool
	Conditions          common.WeatherConditions
	Particles           map[string][]common.ParticleFrame
	Messages            []common.ChatMessage
	Preview             bool
}

// ComputePresentation derives what displays should render.
func ComputePresentation(st *PresentationState) *common.Presentation {
	brightness := clampPercent(st.Brightness)
	p := &common.Presentation{
		Mood:              st.Mood,
		BaseMood:          st.BaseMood,
		Brightness:        brightness,
		Opacity:           brightness / 100,
		Dimmed:            st.Dimmed,
		Asleep:            st.Asleep,
		AnimationsPaused:  st.AnimationsPaused,
		Temperature:       copyFloat(st.Temperature),
		WindSpeed:         copyFloat(st.WindSpeed),
		Precipitation:     copyFloat(st.Precipitation),
		Battery:           copyFloat(st.Battery),
		BatteryVisible:    nil != st.Battery,
		WeatherConditions: st.Conditions.Copy(),
		Particles:         st.Particles,
		Messages:          st.Messages,
		Preview:           st.Preview,
	}

	if nil == p.Particles || st.AnimationsPaused {
		p.Particles = make(map[string][]common.ParticleFrame)
	}
	if nil == p.Messages {
		p.Messages = make([]common.ChatMessage, 0)
	}

	if st.BatteryStateEnabled && nil != st.Charging {
		c := *st.Charging
		p.Charging = &c
	}

	p.Classes = presentationClasses(p)
	return p
}

// Builds body classes.
func presentationClasses(p *common.Presentation) []string {
	classes := []string{"mood-" + p.Mood.String()}

	conditions := make([]string, 0)
	for k, v := range p.WeatherConditions {
		if v {
			conditions = append(conditions, "weather-"+strings.Replace(k.String(), "_", "-", -1))
		}
	}
	sort.Strings(conditions)
	classes = append(classes, conditions...)

	if nil != p.Temperature {
		if *p.Temperature >= temperatureHot {
			classes = append(classes, "temperature-hot")
		} else if *p.Temperature <= temperatureCold {
			classes = append(classes, "temperature-cold")
		}
	}

	if p.BatteryVisible && *p.Battery <= batteryLowLevel {
		classes = append(classes, "battery-low")
	}
	if nil != p.Charging && *p.Charging {
		classes = append(classes, "battery-charging")
	}
	if p.AnimationsPaused {
		classes = append(classes, "animations-paused")
	}
	if p.Dimmed {
		classes = append(classes, "kiosk-dimmed")
	}
	if p.Asleep {
		classes = append(classes, "kiosk-asleep")
	}
	if p.Preview {
		classes = append(classes, "card-preview")
	}

	return classes
}

// BuildChat converts newest-first turns into newest-first chat messages.
// Error takes precedence over reply.
func BuildChat(turns []*common.Turn, maxMessages int) []common.ChatMessage {
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}

	out := make([]common.ChatMessage, 0, maxMessages)
	for _, t := range turns {
		if nil == t {
			continue
		}

		reply := t.Error
		if "" == reply {
			reply = t.Reply
		}
		if "" != reply {
			out = append(out, common.ChatMessage{Role: chatRoleAssistant, Text: reply, TS: t.TS})
		}
		if "" != t.Heard {
			out = append(out, common.ChatMessage{Role: chatRoleUser, Text: t.Heard, TS: t.TS})
		}
	}

	if len(out) > maxMessages {
		out = out[:maxMessages]
	}

	return out
}

// MaxMessages returns chat cap for the turn limit.
func MaxMessages(maxTurns *int) int {
	if nil == maxTurns || *maxTurns <= 0 {
		return defaultMaxMessages
	}

	return *maxTurns * 2
}
