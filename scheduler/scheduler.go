package scheduler

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/simulation"
	"github.com/oomph-ac/springbone/spring"
	"github.com/oomph-ac/springbone/state"
	"github.com/oomph-ac/springbone/utils"
	"github.com/oomph-ac/springbone/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// DefaultStatsWindow is the number of ticks Stats averages over when Options.StatsWindow is zero.
const DefaultStatsWindow = 120

// Skeleton is the host skeleton of an instance.
type Skeleton interface {
	simulation.SkeletonProvider
	spring.BoneIndex
	// Fingerprint hashes the bone hierarchy. It changes when bones are added, removed or
	// reparented.
	Fingerprint() uint64
}

// Options define the behaviour of a Simulator.
type Options struct {
	// Parallel computes springs concurrently on a worker pool.
	Parallel bool
	// Workers limits the number of springs computed at once. Zero uses one per CPU.
	Workers int
	// StatsWindow is the number of ticks kept for Stats.
	StatsWindow int
	// Debugf receives per-joint traces.
	Debugf func(format string, args ...any)
}

// Report summarizes a tick.
type Report struct {
	DeltaTime float64
	Instances int
	// Springs is the number of springs that were simulated.
	Springs  int
	Commands int
	// Errors holds the configuration errors of the springs skipped during the tick.
	Errors []error
}

// Stats are rolling statistics over the most recent ticks.
type Stats struct {
	Ticks         int
	MeanDeltaTime float64
	MaxDeltaTime  float64
	MeanCommands  float64
	MaxCommands   float64
	MeanDuration  time.Duration
}

type tickStat struct {
	deltaTime float64
	commands  int
	duration  time.Duration
}

// Simulator simulates every spring of a set of skeleton instances. Ticks are serialized; instances
// may be added and removed from other goroutines between them.
type Simulator struct {
	log  *logrus.Logger
	opts Options
	sim  simulation.Simulator
	pool *worker.Pool

	instances *orderedmap.OrderedMap[string, *Instance]
	mu        deadlock.RWMutex

	stats  *utils.CircularQueue[tickStat]
	tickMu deadlock.Mutex
}

// New returns a Simulator logging to log. A nil log discards everything.
func New(log *logrus.Logger, opts Options) *Simulator {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = DefaultStatsWindow
	}
	s := &Simulator{
		log:       log,
		opts:      opts,
		sim:       simulation.Simulator{Options: simulation.Options{Debugf: opts.Debugf}},
		instances: orderedmap.NewOrderedMap[string, *Instance](),
		stats:     utils.NewCircularQueue[tickStat](opts.StatsWindow),
	}
	if opts.Parallel {
		s.pool = worker.New(opts.Workers)
	}
	return s
}

// AddInstance validates the rig and registers it against the skeleton passed under a unique
// name. Instances are simulated and committed in the order they were added.
func (s *Simulator) AddInstance(name string, sk Skeleton, rig *spring.Rig) (*Instance, error) {
	if err := rig.Validate(); err != nil {
		return nil, fmt.Errorf("instance %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances.Get(name); ok {
		return nil, oerror.Config("duplicate instance %q", name)
	}
	inst := &Instance{
		Name:     name,
		Skeleton: sk,
		Rig:      rig,
		enabled:  true,
		reported: make(map[string]string),
	}
	inst.refresh()
	s.instances.Set(name, inst)
	s.log.Debugf("added spring bone instance %s (%d springs, %d joints)", name, len(inst.resolved.Springs), len(inst.resolved.Joints))
	return inst, nil
}

// RemoveInstance removes an instance together with the state of its joints.
func (s *Simulator) RemoveInstance(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.instances.Delete(name) {
		return false
	}
	s.log.Debugf("removed spring bone instance %s", name)
	return true
}

// Instance returns the instance registered under name.
func (s *Simulator) Instance(name string) (*Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances.Get(name)
}

// SetEnabled enables or disables the simulation of an instance. A disabled instance keeps the
// state of its joints untouched.
func (s *Simulator) SetEnabled(name string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances.Get(name)
	if ok {
		inst.enabled = enabled
	}
	return ok
}

// ResetState clears the state of every joint of an instance. The joints are seeded again from the
// current pose on the next tick, for example after the object was teleported.
func (s *Simulator) ResetState(name string) bool {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances.Get(name)
	if ok {
		inst.states.ResetAll()
		s.log.Debugf("reset joint states of %s", name)
	}
	return ok
}

// NotifyStructuralChange must be called by the host after it changed the bone hierarchy or the
// rigs. It resolves the instances again and puts sc back into the idle state.
func (s *Simulator) NotifyStructuralChange(sc *Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc.Reset()
	sc.Fingerprint = s.refresh()
	s.log.Debugf("structural change, scheduler reset")
}

// refresh resolves every instance whose structure changed and returns the fingerprint of the
// scene. s.mu must be held and ticks must be excluded.
func (s *Simulator) refresh() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, name := range s.instances.Keys() {
		inst, _ := s.instances.Get(name)
		if inst.refresh() {
			s.log.Debugf("resolved %s again after a structural change", name)
			if inst.invalid != nil {
				s.log.Warnf("instance %s is not simulated: %v", name, inst.invalid)
			}
		}
		_, _ = h.Write([]byte(name))
		binary.LittleEndian.PutUint64(buf[:], inst.fingerprint)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

type job struct {
	inst   *Instance
	spring int
}

// Tick advances every enabled instance by one frame happening at now. All springs are computed
// from the pose as the host left it, then all rotations are applied. A spring whose configuration
// is invalid, or whose computation panics, is skipped for the tick and reported; it never stops
// the other springs.
func (s *Simulator) Tick(sc *Context, now time.Time) Report {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := time.Now()

	if fp := s.refresh(); fp != sc.Fingerprint {
		if sc.State == StateRunning {
			s.log.Debugf("scene structure changed without notification, scheduler reset")
		}
		sc.Reset()
		sc.Fingerprint = fp
	}
	report := Report{DeltaTime: sc.DeltaTime(now)}

	var jobs []job
	for _, name := range s.instances.Keys() {
		inst, _ := s.instances.Get(name)
		if !inst.enabled {
			continue
		}
		if inst.invalid != nil {
			report.Errors = append(report.Errors, fmt.Errorf("instance %s: %w", name, inst.invalid))
			continue
		}
		report.Instances++
		for i := range inst.resolved.Springs {
			jobs = append(jobs, job{inst: inst, spring: i})
		}
	}

	results := make([]simulation.SpringResult, len(jobs))
	errs := make([]error, len(jobs))
	compute := func(_ context.Context, i int) error {
		j := jobs[i]
		sp := j.inst.resolved.Springs[j.spring]
		errs[i] = worker.Guard(func() (err error) {
			results[i], err = s.sim.Spring(j.inst.Skeleton, j.inst.resolved, sp, j.inst.states, report.DeltaTime)
			return err
		})
		if errors.Is(errs[i], worker.ErrPanic) {
			errs[i] = fmt.Errorf("spring %s: %w", sp.Name, errs[i])
		}
		return nil
	}
	if s.pool != nil && len(jobs) > 1 {
		if err := s.pool.Run(context.Background(), len(jobs), compute); err != nil {
			s.log.Errorf("spring compute failed: %v", err)
			report.Errors = append(report.Errors, err)
		}
	} else {
		for i := range jobs {
			_ = compute(context.Background(), i)
		}
	}

	buf := NewCommandBuffer(len(jobs))
	for i, j := range jobs {
		name := j.inst.resolved.Springs[j.spring].Name
		if errs[i] != nil {
			s.springFailed(j.inst, name, errs[i])
			report.Errors = append(report.Errors, fmt.Errorf("instance %s: %w", j.inst.Name, errs[i]))
			continue
		}
		delete(j.inst.reported, name)
		buf.Put(i, j.inst.Skeleton, results[i].Commands)
		report.Springs++
	}
	buf.Seal()
	report.Commands = buf.Commit()

	_ = s.stats.Append(tickStat{deltaTime: report.DeltaTime, commands: report.Commands, duration: time.Since(start)})
	return report
}

// springFailed logs a spring error the first time it is seen.
func (s *Simulator) springFailed(inst *Instance, name string, err error) {
	if inst.reported[name] == err.Error() {
		return
	}
	inst.reported[name] = err.Error()

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("instance", inst.Name)
	data.Set("spring", name)
	var chainErr *oerror.ChainError
	if errors.As(err, &chainErr) {
		data.Set("head", chainErr.Head)
		data.Set("tail", chainErr.Tail)
		if chainErr.Through != "" {
			data.Set("through", chainErr.Through)
		}
	}
	s.log.Warnf("spring skipped: %v %s", err, utils.OrderedMapToString(data))
}

// Stats returns statistics over the most recent ticks.
func (s *Simulator) Stats() Stats {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	n := s.stats.Len()
	deltas, commands, durations := make([]float64, 0, n), make([]float64, 0, n), make([]float64, 0, n)
	for st := range s.stats.Iter() {
		deltas = append(deltas, st.deltaTime)
		commands = append(commands, float64(st.commands))
		durations = append(durations, float64(st.duration))
	}
	return Stats{
		Ticks:         n,
		MeanDeltaTime: omath.Mean(deltas),
		MaxDeltaTime:  omath.Max(deltas),
		MeanCommands:  omath.Mean(commands),
		MaxCommands:   omath.Max(commands),
		MeanDuration:  time.Duration(omath.Mean(durations)),
	}
}

// Instance is a skeleton registered with a rig.
type Instance struct {
	Name     string
	Skeleton Skeleton
	Rig      *spring.Rig

	enabled     bool
	resolved    *spring.Resolved
	states      *state.Store
	fingerprint uint64
	seen        bool
	// invalid is set when the rig no longer validates after a change.
	invalid error
	// reported maps springs to the last error logged for them.
	reported map[string]string
}

// Resolved returns the rig of the instance as resolved against its skeleton.
func (i *Instance) Resolved() *spring.Resolved {
	return i.resolved
}

// States returns the joint states of the instance.
func (i *Instance) States() *state.Store {
	return i.states
}

// refresh resolves the rig again if the skeleton or the rig changed, carrying the state of joints
// that still exist over. It returns true if anything changed.
func (i *Instance) refresh() bool {
	if i.seen && i.hash() == i.fingerprint {
		return false
	}
	// Validation normalizes the rig, so the fingerprint is taken afterwards.
	i.invalid = i.Rig.Validate()
	i.fingerprint, i.seen = i.hash(), true
	if i.invalid != nil {
		return true
	}
	resolved := i.Rig.Resolve(i.Skeleton)
	i.states = state.Rebind(i.states, i.resolved, resolved)
	i.resolved = resolved
	clear(i.reported)
	return true
}

func (i *Instance) hash() uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], i.Skeleton.Fingerprint())
	binary.LittleEndian.PutUint64(buf[8:], i.Rig.Fingerprint())
	return xxh3.Hash(buf[:])
}
