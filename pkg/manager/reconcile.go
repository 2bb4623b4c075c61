package manager

import (
	"context"
	"strings"

	"github.com/epwatch/epwatch/pkg/guide"
	"github.com/epwatch/epwatch/pkg/logger"
	"github.com/epwatch/epwatch/pkg/schedule"
	"github.com/epwatch/epwatch/pkg/watched"
	"go.uber.org/zap"
)

// ActionKind says what the integration pass does with one schedule entry.
type ActionKind int

const (
	ActionKeep ActionKind = iota
	ActionRemove
	ActionUpdate
)

// Action is the decision for one show's schedule entry.
type Action struct {
	Kind  ActionKind
	Code  string
	Aired int64
}

// reconcileOne decides the fate of a show's schedule entry after its watched
// code may have moved. resolve is only invoked when the schedule entry is not
// behind the watched pointer; it supplies a fresh latest-aired resolution.
// A resolution equal to the watched code means nothing new has aired and the
// entry is removed; a different resolution updates the entry in place.
func reconcileOne(watchedCode string, entry schedule.Entry, resolve func() (guide.Resolution, bool, error)) (Action, error) {
	if guide.CodeOrdinal(entry.Code) < guide.CodeOrdinal(watchedCode) {
		return Action{Kind: ActionKeep}, nil
	}

	res, ok, err := resolve()
	if err != nil {
		return Action{Kind: ActionKeep}, err
	}
	if !ok {
		return Action{Kind: ActionKeep}, nil
	}

	if strings.EqualFold(res.Code, watchedCode) {
		return Action{Kind: ActionRemove}, nil
	}

	if res.Code == entry.Code && res.Aired.Unix() == entry.Aired {
		return Action{Kind: ActionKeep}, nil
	}

	return Action{Kind: ActionUpdate, Code: res.Code, Aired: res.Aired.Unix()}, nil
}

// Integrate reconciles the persisted schedule against the current watched
// configuration: fully caught-up shows lose their schedule entry, stale
// entries for deleted shows are dropped, and moved resolutions are updated in
// place. The schedule is re-sorted and persisted only when something changed;
// the number of changed entries is returned.
func (m *Manager) Integrate(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx)

	file, _, err := watched.Load(m.watchedPath)
	if err != nil {
		return 0, err
	}

	sched, err := schedule.Load(m.schedulePath)
	if err != nil {
		return 0, err
	}

	watchedByKey := make(map[string]watched.Entry)
	for _, e := range file.Entries() {
		watchedByKey[strings.ToLower(e.Key)] = e
	}

	// count the shows needing a fresh resolution so a single-show pass gets
	// the reduced politeness interval
	candidates := 0
	for _, s := range sched {
		e, ok := watchedByKey[strings.ToLower(s.Key)]
		if ok && guide.CodeOrdinal(s.Code) >= guide.CodeOrdinal(e.Code) {
			candidates++
		}
	}
	limiter := m.newLimiter(candidates)

	changed := 0
	var kept []schedule.Entry
	for _, s := range sched {
		e, ok := watchedByKey[strings.ToLower(s.Key)]
		if !ok {
			// show no longer tracked
			log.Infow("dropping schedule entry for deleted show", "show", s.Key)
			changed++
			continue
		}

		action, err := reconcileOne(e.Code, s, func() (guide.Resolution, bool, error) {
			if err := limiter.Wait(ctx); err != nil {
				return guide.Resolution{}, false, err
			}
			res, ok, _, err := m.resolveShow(ctx, s.Key)
			return res, ok, err
		})
		if err != nil {
			log.Error("failed to re-resolve show, keeping schedule entry",
				zap.String("show", s.Key), zap.Error(err))
			kept = append(kept, s)
			continue
		}

		switch action.Kind {
		case ActionRemove:
			log.Infow("show fully caught up", "show", s.Key)
			changed++
		case ActionUpdate:
			s.Code = action.Code
			s.Aired = action.Aired
			kept = append(kept, s)
			changed++
			log.Infow("updated schedule entry", "show", s.Key, "code", s.Code)
		default:
			kept = append(kept, s)
		}
	}

	if changed == 0 {
		return 0, nil
	}

	schedule.Sort(kept)
	if err := schedule.Save(m.schedulePath, kept); err != nil {
		return changed, err
	}

	return changed, nil
}
