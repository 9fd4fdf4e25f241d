package predictor

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

// Registry constructs the predictor variants from a manifest directory and
// tracks their load state. It is immutable after LoadRegistry and safe for
// concurrent use.
type Registry struct {
	predictors map[models.ModelKind]Predictor
	manifests  map[models.ModelKind]*Manifest
}

// LoadRegistry reads one manifest per variant from dir (lstm.json,
// random_forest.json, linear_regression.json). A missing or corrupt manifest
// leaves that variant unloaded; it never fails startup.
func LoadRegistry(dir string, log zerolog.Logger) *Registry {
	log = log.With().Str("component", "models").Logger()

	reg := &Registry{
		predictors: make(map[models.ModelKind]Predictor),
		manifests:  make(map[models.ModelKind]*Manifest),
	}
	for _, kind := range models.AllModelKinds() {
		manifest := loadKindManifest(dir, kind, log)
		reg.manifests[kind] = manifest
		switch kind {
		case models.KindSequence:
			reg.predictors[kind] = NewSequenceModel(manifest)
		case models.KindTreeEnsemble:
			reg.predictors[kind] = NewForestModel(manifest)
		case models.KindLinear:
			reg.predictors[kind] = NewLinearModel(manifest)
		}

		if manifest != nil {
			log.Info().
				Str("model", kind.WireName()).
				Float64("accuracy", manifest.Accuracy).
				Msg("Model loaded")
		}
	}
	return reg
}

func loadKindManifest(dir string, kind models.ModelKind, log zerolog.Logger) *Manifest {
	path := filepath.Join(dir, kind.WireName()+".json")

	manifest, err := LoadManifest(path)
	if err != nil {
		log.Warn().Err(err).Str("model", kind.WireName()).Msg("Model unavailable")
		return nil
	}
	if manifest.Kind != string(kind) {
		log.Warn().
			Str("model", kind.WireName()).
			Str("manifest_kind", manifest.Kind).
			Msg("Model unavailable: manifest kind mismatch")
		return nil
	}
	return manifest
}

// Predictors returns all variants in fixed reporting order, loaded or not
func (r *Registry) Predictors() []Predictor {
	out := make([]Predictor, 0, len(r.predictors))
	for _, kind := range models.AllModelKinds() {
		if p, ok := r.predictors[kind]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the predictor for a kind
func (r *Registry) Get(kind models.ModelKind) (Predictor, error) {
	p, ok := r.predictors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown model kind: %s", kind)
	}
	return p, nil
}

// Status reports load state, display type, and trained accuracy per wire
// name, for the models status endpoint
func (r *Registry) Status() map[string]models.ModelStatus {
	status := make(map[string]models.ModelStatus, len(r.predictors))
	for kind, p := range r.predictors {
		s := models.ModelStatus{
			Loaded: p.Loaded(),
			Type:   kind.DisplayType(),
		}
		if m := r.manifests[kind]; m != nil {
			s.Accuracy = m.Accuracy
		}
		status[kind.WireName()] = s
	}
	return status
}

// LoadedByWireName reports just the load flags, for the health endpoint
func (r *Registry) LoadedByWireName() map[string]bool {
	loaded := make(map[string]bool, len(r.predictors))
	for kind, p := range r.predictors {
		loaded[kind.WireName()] = p.Loaded()
	}
	return loaded
}
