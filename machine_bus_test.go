package main

import (
	"strings"
	"testing"
)

type busAccess struct {
	write  bool
	offset uint32
	value  uint64
	size   int
}

// recordingBank is a register bank that logs every access.
type recordingBank struct {
	log  []busAccess
	read uint64
}

func (r *recordingBank) onRead(offset uint32, size int) uint64 {
	r.log = append(r.log, busAccess{offset: offset, size: size})
	return r.read
}

func (r *recordingBank) onWrite(offset uint32, value uint64, size int) {
	r.log = append(r.log, busAccess{write: true, offset: offset, value: value, size: size})
}

func TestMachineBus_DispatchesOffsetAndSize(t *testing.T) {
	bus := NewMachineBus()
	bank := &recordingBank{read: 0xCAFEBABE}
	bus.MapIO("bank", 0x30000000, 0x3000001F, bank.onRead, bank.onWrite)

	bus.Write16(0x30000008, 0x1234)
	if got := bus.Read32(0x30000004); got != 0xCAFEBABE {
		t.Fatalf("Read32 = 0x%08X", got)
	}
	bus.Write8(0x3000001F, 0xAB)

	want := []busAccess{
		{write: true, offset: 0x08, value: 0x1234, size: 2},
		{offset: 0x04, size: 4},
		{write: true, offset: 0x1F, value: 0xAB, size: 1},
	}
	if len(bank.log) != len(want) {
		t.Fatalf("log %+v, expected %+v", bank.log, want)
	}
	for i := range want {
		if bank.log[i] != want[i] {
			t.Fatalf("access %d = %+v, expected %+v", i, bank.log[i], want[i])
		}
	}
}

func TestMachineBus_Unmapped(t *testing.T) {
	bus := NewMachineBus()
	bus.MapIO("bank", 0x1000, 0x101F, nil, nil)

	if _, ok := bus.Read(0x1020, 4); ok {
		t.Fatal("read past the bank reported mapped")
	}
	if bus.Write(0x0FFF, 1, 1) {
		t.Fatal("write before the bank reported mapped")
	}
	if got := bus.Read32(0x2000); got != 0 {
		t.Fatalf("unmapped Read32 = 0x%X", got)
	}
	// Nil callbacks: mapped, reads zero
	if v, ok := bus.Read(0x1000, 4); !ok || v != 0 {
		t.Fatalf("nil onRead: value 0x%X ok %v", v, ok)
	}
}

func TestMachineBus_RAMWindowAcrossPages(t *testing.T) {
	bus := NewMachineBus()
	mem := NewVideoMemory(3 * BUS_PAGE_SIZE)
	bus.MapRAM("vram", 0x80000000, mem)

	last := uint32(0x80000000 + 3*BUS_PAGE_SIZE - 4)
	bus.Write32(last, 0xDEADBEEF)
	if got := bus.Read32(last); got != 0xDEADBEEF {
		t.Fatalf("Read32 at end of window = 0x%08X", got)
	}
	if mem.Read(uint32(3*BUS_PAGE_SIZE-4), 4) != 0xDEADBEEF {
		t.Fatal("store did not reach video memory")
	}
	if !mem.IsDirty(3*BUS_PAGE_SIZE-4, 4) {
		t.Fatal("bus store did not mark the page dirty")
	}
	bus.Write64(0x80001000, 0x1122334455667788)
	if got := bus.Read64(0x80001000); got != 0x1122334455667788 {
		t.Fatalf("Read64 = 0x%X", got)
	}
}

func TestMachineBus_SharedPage(t *testing.T) {
	bus := NewMachineBus()
	a := &recordingBank{read: 0xA}
	b := &recordingBank{read: 0xB}
	bus.MapIO("a", 0x10000000, 0x1000001F, a.onRead, a.onWrite)
	bus.MapIO("b", 0x10000020, 0x10000027, b.onRead, b.onWrite)

	if bus.Read32(0x1000001C) != 0xA || bus.Read32(0x10000024) != 0xB {
		t.Fatal("two banks in one page dispatched wrongly")
	}
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Fatalf("panic %v, expected it to contain %q", r, contains)
		}
	}()
	fn()
}

func TestMachineBus_MappingErrors(t *testing.T) {
	bus := NewMachineBus()
	bus.MapIO("first", 0x1000, 0x10FF, nil, nil)

	expectPanic(t, "overlaps first", func() { bus.MapIO("second", 0x10F0, 0x1100, nil, nil) })
	expectPanic(t, "before start", func() { bus.MapIO("backwards", 0x3000, 0x2000, nil, nil) })

	bus.SealMappings()
	expectPanic(t, "after execution started", func() { bus.MapIO("late", 0x5000, 0x5003, nil, nil) })
	expectPanic(t, "after execution started", func() { bus.MapRAM("late", 0x6000, NewVideoMemory(16)) })
}

func TestMachineBus_ResetClearsRAM(t *testing.T) {
	bus := NewMachineBus()
	mem := NewVideoMemory(BUS_PAGE_SIZE)
	bus.MapRAM("vram", 0x2000, mem)
	bus.Write32(0x2000, 0xFFFFFFFF)
	bus.Reset()
	if bus.Read32(0x2000) != 0 {
		t.Fatal("reset left RAM contents")
	}
	if len(bus.Regions()) != 1 {
		t.Fatal("reset dropped mappings")
	}
}

// BenchmarkRead32_IORegion measures read performance for I/O-mapped addresses
func BenchmarkRead32_IORegion(b *testing.B) {
	bus := NewMachineBus()
	bus.MapIO("bank", 0x30000000, 0x3000001F, func(uint32, int) uint64 { return 0x42 }, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Read32(0x30000004)
	}
}

// BenchmarkWrite32_RAM measures write performance for video memory
func BenchmarkWrite32_RAM(b *testing.B) {
	bus := NewMachineBus()
	bus.MapRAM("vram", 0x80000000, NewVideoMemory(VRAM_SIZE))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Write32(0x80000000+uint32(i&0xFFFF)*4, uint32(i))
	}
}
