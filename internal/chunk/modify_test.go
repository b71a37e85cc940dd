package chunk

import (
	"testing"

	"github.com/shisoft/lightning/internal/hashfn"
)

func TestModifyInsertThenGet(t *testing.T) {
	c := Alloc(16, NewObjectAttachment[string])
	defer c.Destroy()

	res := Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpInsert, Payload: 7, Attach: "three"})
	if res.Kind != ResDone {
		t.Fatalf("first insert = %v, want ResDone", res.Kind)
	}

	v, idx := Get(c, hashfn.Passthrough{}, 3)
	if v.Kind != KindLive || v.Payload != 7 {
		t.Fatalf("Get after insert = (%v, %d)", v.Kind, v.Payload)
	}
	if got := c.AttachmentGet(idx, 3); got != "three" {
		t.Fatalf("attachment = %q, want %q", got, "three")
	}
}

func TestModifyInsertReplacesExisting(t *testing.T) {
	c := Alloc(16, NewObjectAttachment[string])
	defer c.Destroy()

	Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpInsert, Payload: 7, Attach: "three"})
	res := Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpInsert, Payload: 70, Attach: "THREE"})

	if res.Kind != ResReplaced {
		t.Fatalf("second insert = %v, want ResReplaced", res.Kind)
	}
	if res.Value != 7 {
		t.Fatalf("replaced value = %d, want 7 (the prior payload)", res.Value)
	}

	v, idx := Get(c, hashfn.Passthrough{}, 3)
	if v.Payload != 70 {
		t.Fatalf("current payload = %d, want 70", v.Payload)
	}
	if got := c.AttachmentGet(idx, 3); got != "THREE" {
		t.Fatalf("attachment after replace = %q, want %q", got, "THREE")
	}
}

func TestModifyRemoveReturnsAttachmentCapturedBeforeErase(t *testing.T) {
	c := Alloc(16, NewObjectAttachment[string])
	defer c.Destroy()

	Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpInsert, Payload: 7, Attach: "three"})
	res := Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpEmpty})

	if res.Kind != ResReplaced {
		t.Fatalf("remove result = %v, want ResReplaced", res.Kind)
	}
	if res.Value != 7 {
		t.Fatalf("removed value = %d, want 7", res.Value)
	}
	// The key invariant this test guards: the caller must see the
	// attachment that was actually removed, not a zeroed slot, even though
	// Erase has already run by the time Modify returns.
	if res.Attach != "three" {
		t.Fatalf("removed attachment = %q, want %q", res.Attach, "three")
	}

	v, _ := Get(c, hashfn.Passthrough{}, 3)
	if v.Kind != KindEmpty {
		t.Fatalf("key should be absent after remove, got %v", v.Kind)
	}
}

func TestModifyRemoveMissingKey(t *testing.T) {
	c := Alloc(16, NewNullAttachment[struct{}])
	defer c.Destroy()

	res := Modify(c, hashfn.Passthrough{}, 3, Op[struct{}]{Kind: OpEmpty})
	if res.Kind != ResFail {
		t.Fatalf("remove on empty chunk = %v, want ResFail", res.Kind)
	}
}

func TestModifyAttemptInsertFailsOnExistingLiveKey(t *testing.T) {
	c := Alloc(16, NewNullAttachment[struct{}])
	defer c.Destroy()

	Modify(c, hashfn.Passthrough{}, 3, Op[struct{}]{Kind: OpInsert, Payload: 7})
	res := Modify(c, hashfn.Passthrough{}, 3, Op[struct{}]{Kind: OpAttemptInsert, Payload: 8})

	if res.Kind != ResFail {
		t.Fatalf("AttemptInsert on live key = %v, want ResFail", res.Kind)
	}
	if res.Value != 7 {
		t.Fatalf("ResFail.Value = %d, want 7 (the existing payload)", res.Value)
	}
}

func TestModifyAttemptInsertSucceedsOnEmptySlot(t *testing.T) {
	c := Alloc(16, NewNullAttachment[struct{}])
	defer c.Destroy()

	res := Modify(c, hashfn.Passthrough{}, 3, Op[struct{}]{Kind: OpAttemptInsert, Payload: 8})
	if res.Kind != ResDone {
		t.Fatalf("AttemptInsert on empty slot = %v, want ResDone", res.Kind)
	}
}

func TestModifySentinelMarksSlotAndErasesAttachment(t *testing.T) {
	c := Alloc(16, NewObjectAttachment[string])
	defer c.Destroy()

	Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpInsert, Payload: 7, Attach: "three"})
	res := Modify(c, hashfn.Passthrough{}, 3, Op[string]{Kind: OpSentinel})
	if res.Kind != ResDone {
		t.Fatalf("sentinel result = %v, want ResDone", res.Kind)
	}

	v, _ := Get(c, hashfn.Passthrough{}, 3)
	if v.Kind != KindSentinel {
		t.Fatalf("slot kind after sentinel = %v, want KindSentinel", v.Kind)
	}
}

func TestModifyTableFullOnInsert(t *testing.T) {
	c := Alloc(4, NewNullAttachment[struct{}])
	defer c.Destroy()

	for i := uint64(1); i <= 4; i++ {
		res := Modify(c, hashfn.Passthrough{}, i, Op[struct{}]{Kind: OpInsert, Payload: i + 1})
		if res.Kind != ResDone {
			t.Fatalf("insert %d = %v, want ResDone", i, res.Kind)
		}
	}

	res := Modify(c, hashfn.Passthrough{}, 99, Op[struct{}]{Kind: OpInsert, Payload: 1})
	if res.Kind != ResTableFull {
		t.Fatalf("insert into full chunk = %v, want ResTableFull", res.Kind)
	}
}
