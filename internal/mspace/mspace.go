package mspace

import (
	"fmt"

	"github.com/sysprog21/linmo/internal/list"
	"github.com/sysprog21/linmo/internal/pmp"
)

// noRegion marks a flexpage that holds no hardware PMP slot.
const noRegion = -1

// Flexpage describes one contiguous physical range and the access rights
// a task's memory space grants to it. A flexpage is "resident" once
// Activate or LoadFlexpage has assigned it a hardware region; resident
// flexpages occupy a PMP slot and are therefore enforced, non-resident
// ones are bookkeeping only.
type Flexpage struct {
	Base, Size uint32
	R, W, X    bool
	Priority   pmp.Priority

	pmpID int // noRegion when not resident.
	used  uint64

	pageHandle   list.Handle // Position in the owning space's full page list.
	loadedHandle list.Handle // Position in the owning space's resident list, or list.None.
}

// Resident reports whether fp currently occupies a hardware PMP region.
func (fp *Flexpage) Resident() bool { return fp.pmpID != noRegion }

// RegionIndex returns the hardware region fp occupies, or noRegion.
func (fp *Flexpage) RegionIndex() int { return fp.pmpID }

// Space is a memory space: the set of flexpages one or more tasks share
// (see Shared) through a common set of hardware PMP regions. regionPool is
// the fixed subset of the 16 global hardware slots this space is allowed
// to use; it is assigned at creation and never grows — "more flexpages
// than free hardware slots" is scoped per space, not globally.
type Space struct {
	ID     uint32
	Shared bool

	cfg        *pmp.Config
	regionPool []int

	pages  *list.List[*Flexpage]
	loaded *list.List[*Flexpage]

	clock uint64
}

// NewSpace creates an empty memory space bound to cfg, owning the given
// hardware region indices.
func NewSpace(id uint32, shared bool, cfg *pmp.Config, regionPool []int) *Space {
	return &Space{
		ID:         id,
		Shared:     shared,
		cfg:        cfg,
		regionPool: regionPool,
		pages:      list.New[*Flexpage](),
		loaded:     list.New[*Flexpage](),
	}
}

// CreateFlexpage allocates a new, non-resident flexpage and links it into
// s's owning list.
func (s *Space) CreateFlexpage(base, size uint32, r, w, x bool, priority pmp.Priority) *Flexpage {
	fp := &Flexpage{
		Base: base, Size: size,
		R: r, W: w, X: x,
		Priority: priority,
		pmpID:    noRegion,
	}

	fp.pageHandle = s.pages.PushBack(fp)

	return fp
}

// DestroyFlexpage evicts fp if resident and unlinks it from s.
func (s *Space) DestroyFlexpage(fp *Flexpage) error {
	if fp.Resident() {
		if err := s.EvictFlexpage(fp); err != nil {
			return err
		}
	}

	s.pages.Remove(fp.pageHandle)

	return nil
}

// Destroy walks s's owning list and destroys every flexpage it holds,
// evicting each from hardware as it goes.
func (s *Space) Destroy() error {
	for {
		fp, ok := s.pages.Front()
		if !ok {
			return nil
		}

		if err := s.DestroyFlexpage(fp); err != nil {
			return err
		}
	}
}

// LoadFlexpage installs fp into hardware region regionIdx and links it
// into s's resident list. regionIdx must belong to s.regionPool.
func (s *Space) LoadFlexpage(fp *Flexpage, regionIdx int) error {
	if !s.ownsRegion(regionIdx) {
		return fmt.Errorf("mspace: region %d is not in this space's pool", regionIdx)
	}

	if err := s.cfg.SetRegion(regionIdx, pmp.Region{
		Start:    fp.Base,
		End:      fp.Base + fp.Size,
		R:        fp.R,
		W:        fp.W,
		X:        fp.X,
		Priority: fp.Priority,
	}); err != nil {
		return err
	}

	fp.pmpID = regionIdx
	fp.loadedHandle = s.loaded.PushBack(fp)

	return nil
}

// EvictFlexpage disables fp's hardware region and unlinks it from s's
// resident list.
func (s *Space) EvictFlexpage(fp *Flexpage) error {
	if !fp.Resident() {
		return ErrNotResident
	}

	if err := s.cfg.DisableRegion(fp.pmpID); err != nil {
		return err
	}

	s.loaded.Remove(fp.loadedHandle)
	fp.pmpID = noRegion
	fp.loadedHandle = list.None

	return nil
}

func (s *Space) ownsRegion(idx int) bool {
	for _, r := range s.regionPool {
		if r == idx {
			return true
		}
	}

	return false
}

// occupiedRegions returns the set of hardware region indices this space
// currently has resident.
func (s *Space) occupiedRegions() map[int]bool {
	occ := make(map[int]bool, s.loaded.Len())
	s.loaded.Each(func(_ list.Handle, fp *Flexpage) bool {
		occ[fp.pmpID] = true
		return true
	})

	return occ
}

// Activate makes fp resident, loading it into a free hardware region from
// s's pool if one is available. If the pool is full, it evicts the
// resident flexpage of lowest value first — highest Priority value (most
// evictable) wins, ties broken by least-recently-used — and refuses only
// if every resident flexpage is PriorityKernel, which is never evicted
// while the kernel is live.
func (s *Space) Activate(fp *Flexpage) error {
	s.clock++
	fp.used = s.clock

	if fp.Resident() {
		return nil
	}

	occ := s.occupiedRegions()

	for _, idx := range s.regionPool {
		if !occ[idx] {
			return s.LoadFlexpage(fp, idx)
		}
	}

	victim := s.evictionCandidate()
	if victim == nil {
		return ErrNoFreeRegion
	}

	idx := victim.pmpID
	if err := s.EvictFlexpage(victim); err != nil {
		return err
	}

	return s.LoadFlexpage(fp, idx)
}

// ActivateAll activates every flexpage s owns, in creation order. It is
// the call a context switch makes on behalf of the task owning s: rather
// than track which individual pages a task is about to touch, the whole
// space is brought resident page by page, evicting lower-priority
// occupants of its region pool as needed. The first error (typically
// ErrNoFreeRegion, meaning the space owns more non-kernel flexpages than
// its pool has slots for) stops the walk and is returned.
func (s *Space) ActivateAll() error {
	var err error

	s.pages.Each(func(_ list.Handle, fp *Flexpage) bool {
		if err = s.Activate(fp); err != nil {
			return false
		}

		return true
	})

	return err
}

// evictionCandidate picks the resident flexpage to reclaim: highest
// Priority value first (TEMPORARY > SHARED > STACK > KERNEL), then lowest
// used (least recently activated). PriorityKernel pages are never chosen.
func (s *Space) evictionCandidate() *Flexpage {
	var best *Flexpage

	s.loaded.Each(func(_ list.Handle, fp *Flexpage) bool {
		if fp.Priority == pmp.PriorityKernel {
			return true
		}

		if best == nil || fp.Priority > best.Priority ||
			(fp.Priority == best.Priority && fp.used < best.used) {
			best = fp
		}

		return true
	})

	return best
}
