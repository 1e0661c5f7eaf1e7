// Package core provides the Cloner, which duplicates entity graphs.
package core

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/comalice/statekeep/internal/primitives"
)

// Cloner produces shallow and deep copies of entity graphs held in an Arena.
//
// A Cloner holds only configuration and may be shared; each call works on
// its own Memo. The arenas passed in are not locked, so callers must not
// mutate them concurrently with a clone.
type Cloner struct {
	cfg config
}

// NewCloner creates a Cloner.
func NewCloner(opts ...Option) *Cloner {
	return &Cloner{cfg: newConfig(opts)}
}

// Shallow copies root into a new entity of the same arena. Owned containers
// (lists, sets) are copied; references keep pointing at the same entities,
// so mutating a referenced entity is visible through both copies.
func (c *Cloner) Shallow(a *primitives.Arena, root primitives.Handle) (primitives.Handle, error) {
	if !a.Valid(root) {
		err := fmt.Errorf("shallow clone %s: %w", root, ErrInvalidHandle)
		c.cfg.metrics.CloneFinished(CloneShallow, 0, err)
		return primitives.Nil, err
	}
	clone := a.New()
	err := a.RangeFields(root, func(name string, v primitives.Value) bool {
		// Set cannot fail on a handle we just allocated.
		_ = a.Set(clone, name, v)
		return true
	})
	if err != nil {
		_ = a.Free(clone)
		c.cfg.metrics.CloneFinished(CloneShallow, 0, err)
		return primitives.Nil, err
	}
	c.cfg.metrics.CloneFinished(CloneShallow, 1, nil)
	c.cfg.logger.Debug("cloner: shallow clone", slog.String("root", root.String()), slog.String("clone", clone.String()))
	return clone, nil
}

// Deep copies every entity reachable from root within the same arena and
// returns the clone of root. Shared sub-graphs stay shared and cycles map
// to equal-shaped cycles. On error nothing allocated by the call survives.
func (c *Cloner) Deep(ctx context.Context, a *primitives.Arena, root primitives.Handle) (primitives.Handle, error) {
	return c.DeepInto(ctx, a, a, root, nil)
}

// DeepInto deep-copies the graph reachable from root in src into dst.
//
// memo may be nil. When memo already maps root to a live entity of dst,
// that entity's fields are replaced by root's (cloned) fields instead of
// allocating a new root; this is how a snapshot graph is restored onto a
// live entity without changing its handle.
//
// The call is atomic: on any error every entity it allocated is freed and
// pre-seeded targets are left untouched.
func (c *Cloner) DeepInto(ctx context.Context, dst, src *primitives.Arena, root primitives.Handle, memo *Memo) (primitives.Handle, error) {
	_, span := c.cfg.tracer.Start(ctx, "core.Cloner.DeepInto")
	defer span.End()

	if memo == nil {
		memo = NewMemo()
	}
	run := &deepRun{
		dst:    dst,
		src:    src,
		memo:   memo,
		budget: c.cfg.maxCloneEntities,
	}

	out, err := run.clone(root)
	if err != nil {
		freed := run.rollback()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.cfg.metrics.CloneFinished(CloneDeep, 0, err)
		c.cfg.logger.Warn("cloner: deep clone failed",
			slog.String("root", root.String()),
			slog.Int("freed", freed),
			slog.Any("error", err))
		_ = c.cfg.publisher.Publish(ctx, Event{
			Kind:      EventCloneFailed,
			Subject:   root.String(),
			Detail:    err.Error(),
			Timestamp: c.cfg.now(),
		})
		return primitives.Nil, err
	}

	if c.cfg.interner != nil {
		run.canonicalize(c.cfg.interner)
	}

	span.SetAttributes(
		attribute.Int("clone.entities", run.visited),
		attribute.Int("clone.allocated", len(run.allocated)),
	)
	c.cfg.metrics.CloneFinished(CloneDeep, run.visited, nil)
	c.cfg.logger.Debug("cloner: deep clone",
		slog.String("root", root.String()),
		slog.String("clone", out.String()),
		slog.Int("entities", run.visited))
	_ = c.cfg.publisher.Publish(ctx, Event{
		Kind:      EventCloneCompleted,
		Subject:   out.String(),
		Detail:    fmt.Sprintf("%d entities from %s", run.visited, root),
		Timestamp: c.cfg.now(),
	})
	return out, nil
}

type cloneJob struct {
	orig, clone primitives.Handle
	// overwrite is set for pre-seeded targets, whose fields are replaced
	// only once the whole graph has been copied.
	overwrite bool
}

type pendingFields struct {
	target primitives.Handle
	fields map[string]primitives.Value
}

// deepRun is the state of one DeepInto call.
type deepRun struct {
	dst, src  *primitives.Arena
	memo      *Memo
	budget    int
	work      []cloneJob
	allocated []primitives.Handle
	// registered lists the memo keys this run added, so a failed run can
	// leave a caller-supplied memo as it found it.
	registered []primitives.Handle
	pending    []pendingFields
	visited    int
}

func (r *deepRun) clone(root primitives.Handle) (primitives.Handle, error) {
	if !r.src.Valid(root) {
		return primitives.Nil, fmt.Errorf("deep clone %s: %w", root, ErrInvalidHandle)
	}

	var out primitives.Handle
	if target, ok := r.memo.Lookup(root); ok {
		if !r.dst.Valid(target) {
			return primitives.Nil, fmt.Errorf("deep clone %s onto %s: %w", root, target, ErrInvalidHandle)
		}
		r.work = append(r.work, cloneJob{orig: root, clone: target, overwrite: true})
		out = target
	} else {
		h, err := r.resolve(root)
		if err != nil {
			return primitives.Nil, err
		}
		out = h
	}

	for len(r.work) > 0 {
		job := r.work[len(r.work)-1]
		r.work = r.work[:len(r.work)-1]
		if err := r.copyFields(job); err != nil {
			return primitives.Nil, err
		}
	}

	for _, p := range r.pending {
		for _, name := range r.dst.Fields(p.target) {
			_ = r.dst.Delete(p.target, name)
		}
		for name, v := range p.fields {
			_ = r.dst.Set(p.target, name, v)
		}
	}
	return out, nil
}

// resolve returns the clone of orig, allocating and registering it before
// any of its fields are visited. Registering first is what terminates
// cycles: a reference back to orig found while copying its descendants
// hits the memo.
func (r *deepRun) resolve(orig primitives.Handle) (primitives.Handle, error) {
	if c, ok := r.memo.Lookup(orig); ok {
		return c, nil
	}
	if !r.src.Valid(orig) {
		return primitives.Nil, fmt.Errorf("dangling reference %s: %w", orig, ErrInvalidHandle)
	}
	if r.budget > 0 && len(r.allocated) >= r.budget {
		return primitives.Nil, fmt.Errorf("%w: limit %d reached at %s", ErrCloneExhausted, r.budget, orig)
	}
	c := r.dst.New()
	r.allocated = append(r.allocated, c)
	r.registered = append(r.registered, orig)
	r.memo.Register(orig, c)
	r.work = append(r.work, cloneJob{orig: orig, clone: c})
	return c, nil
}

func (r *deepRun) copyFields(job cloneJob) error {
	r.visited++
	fields := make(map[string]primitives.Value)
	var firstErr error
	err := r.src.RangeFields(job.orig, func(name string, v primitives.Value) bool {
		mapped, err := v.MapRefs(r.resolve)
		if err != nil {
			firstErr = fmt.Errorf("field %s.%s: %w", job.orig, name, err)
			return false
		}
		fields[name] = mapped
		return true
	})
	if err != nil {
		return err
	}
	if firstErr != nil {
		return firstErr
	}

	if job.overwrite {
		r.pending = append(r.pending, pendingFields{target: job.clone, fields: fields})
		return nil
	}
	for name, v := range fields {
		if err := r.dst.Set(job.clone, name, v); err != nil {
			return err
		}
	}
	return nil
}

// canonicalize routes every shared value of the cloned graph through the
// interner.
func (r *deepRun) canonicalize(i *Interner) {
	targets := r.allocated
	for _, p := range r.pending {
		targets = append(targets, p.target)
	}
	for _, h := range targets {
		for _, name := range r.dst.Fields(h) {
			v, _ := r.dst.Get(h, name)
			_ = r.dst.Set(h, name, v.MapShared(i.Canonical))
		}
	}
}

// rollback frees every entity the run allocated and forgets its memo
// entries. It returns the number of entities freed.
func (r *deepRun) rollback() int {
	freed := 0
	for _, h := range r.allocated {
		// Only fails if the arena was mutated concurrently, which callers
		// must not do.
		if err := r.dst.Free(h); err == nil {
			freed++
		}
	}
	for _, orig := range r.registered {
		r.memo.forget(orig)
	}
	r.allocated = r.allocated[:0]
	r.registered = r.registered[:0]
	r.pending = nil
	return freed
}
