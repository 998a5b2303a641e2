// Package scenario loads scripted actor timelines and replays them as a
// director host, so the director can run offline against known situations.
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/tankrun/internal/model"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("scenario.schema.json", schemaJSON)

// DefaultTick is the clock step used when a scenario does not set tick_ms.
const DefaultTick = 100 * time.Millisecond

// Scenario is a timeline of host enumerations.
type Scenario struct {
	Name        string  `json:"name"`
	RouteLength float64 `json:"route_length"`
	TickMS      int64   `json:"tick_ms"`
	DurationMS  int64   `json:"duration_ms"`
	Frames      []Frame `json:"frames"`
}

// Frame is the set of actors visible from AtMS on, until the next frame.
type Frame struct {
	AtMS   int64   `json:"at_ms"`
	Actors []Actor `json:"actors"`
}

// Actor is one scripted actor.
type Actor struct {
	Kind            string  `json:"kind"`
	ID              uint32  `json:"id"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Z               float64 `json:"z"`
	Progress        float64 `json:"progress"`
	Dead            bool    `json:"dead"`
	Away            bool    `json:"away"`
	Incapacitated   bool    `json:"incapacitated"`
	LedgeHanging    bool    `json:"ledge_hanging"`
	InFinalSafeZone bool    `json:"in_final_safe_zone"`
	Target          uint32  `json:"target"`
}

// Model converts the scripted actor to a host observation.
func (a Actor) Model() model.Actor {
	kind := model.KindPlayer
	if a.Kind == "antagonist" {
		kind = model.KindAntagonist
	}
	return model.Actor{
		Kind:            kind,
		ID:              model.ActorID(a.ID),
		Location:        model.NewLocation(a.X, a.Y, a.Z),
		Progress:        a.Progress,
		Dead:            a.Dead,
		Away:            a.Away,
		Incapacitated:   a.Incapacitated,
		LedgeHanging:    a.LedgeHanging,
		InFinalSafeZone: a.InFinalSafeZone,
		Target:          model.ActorID(a.Target),
	}
}

// Tick returns the clock step.
func (s *Scenario) Tick() time.Duration {
	if s.TickMS <= 0 {
		return DefaultTick
	}
	return time.Duration(s.TickMS) * time.Millisecond
}

// Duration returns when the replay ends: duration_ms, or one tick past the
// last frame.
func (s *Scenario) Duration() time.Duration {
	if s.DurationMS > 0 {
		return time.Duration(s.DurationMS) * time.Millisecond
	}
	return time.Duration(s.Frames[len(s.Frames)-1].AtMS)*time.Millisecond + s.Tick()
}

// Load reads a scenario file. JSON and YAML (.yaml, .yml) are accepted; both
// are checked against the scenario schema.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse validates and decodes a JSON scenario document.
func Parse(data []byte) (*Scenario, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}

	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	slices.SortStableFunc(sc.Frames, func(a, b Frame) int {
		return int(a.AtMS - b.AtMS)
	})
	return &sc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
