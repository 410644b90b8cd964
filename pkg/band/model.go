package band

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Model is the detected hardware variant. It governs the EEG bit depth,
// PPG availability and the preset selected during the handshake.
type Model int32

const (
	ModelUnknown Model = iota
	// ModelBand2 is the baseline variant: 12-bit EEG, no PPG.
	ModelBand2
	// ModelAthena is the alternate variant: 14-bit EEG with PPG.
	ModelAthena
)

func (m Model) String() string {
	switch m {
	case ModelBand2:
		return "band2"
	case ModelAthena:
		return "athena"
	default:
		return "unknown"
	}
}

// EEGBits returns the packed sample width for the variant. Unknown
// hardware decodes as the baseline 12-bit layout.
func (m Model) EEGBits() int {
	if m == ModelAthena {
		return 14
	}
	return 12
}

// HasPPG reports whether the variant carries PPG endpoints.
func (m Model) HasPPG() bool {
	return m == ModelAthena
}

// Preset returns the configuration preset issued during the handshake.
func (m Model) Preset() string {
	if m == ModelAthena {
		return "p1035"
	}
	return "p21"
}

// modelTokens maps identifying substrings in control info values to the
// variant they reveal. Matching is case-insensitive; the alternate
// variant is checked first since its tokens are the more specific ones.
var modelTokens = []struct {
	model  Model
	tokens []string
}{
	{model: ModelAthena, tokens: []string{"athena", "muse s"}},
	{model: ModelBand2, tokens: []string{"muse-2", "muse 2"}},
}

// detector locks the hardware variant from accumulated control info.
// Detection is one-shot: the first match wins and later control data is
// never re-evaluated.
type detector struct {
	logger *logrus.Logger

	mu       sync.Mutex
	model    Model
	resolved chan struct{}
}

func newDetector(logger *logrus.Logger) *detector {
	return &detector{
		logger:   logger,
		resolved: make(chan struct{}),
	}
}

// Model returns the locked variant, or ModelUnknown before resolution.
func (d *detector) Model() Model {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

// Observe scans freshly merged control info values for identifying
// tokens. A match locks the model and wakes any pending Wait.
func (d *detector) Observe(values []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model != ModelUnknown {
		return
	}
	for _, entry := range modelTokens {
		for _, tok := range entry.tokens {
			for _, v := range values {
				if strings.Contains(strings.ToLower(v), tok) {
					d.lock(entry.model)
					d.logger.WithFields(logrus.Fields{
						"model": entry.model.String(),
						"token": tok,
					}).Info("Hardware variant detected")
					return
				}
			}
		}
	}
}

// Wait blocks until the model resolves or the timeout elapses. On
// timeout the baseline variant is locked and ErrModelDetectionTimeout is
// returned; the caller treats it as non-fatal. Both the timer and the
// wake channel are released whichever way the wait resolves.
func (d *detector) Wait(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.resolved:
		return nil
	case <-timer.C:
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.model != ModelUnknown {
			// Detection won the race against the timer.
			return nil
		}
		d.lock(ModelBand2)
		return ErrModelDetectionTimeout
	}
}

// lockDefault resolves immediately to the baseline variant; used by the
// mock path, which has no control stream to observe.
func (d *detector) lockDefault() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model == ModelUnknown {
		d.lock(ModelBand2)
	}
}

// lock stores the model and closes the wake channel. Caller holds d.mu.
func (d *detector) lock(m Model) {
	d.model = m
	close(d.resolved)
}
