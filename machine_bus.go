// machine_bus.go - Machine Bus for the CEP board

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
machine_bus.go - Machine Bus for the CEP board

This module implements the address decoder that sits between a guest CPU
core and the board devices. It provides size-aware 8/16/32/64-bit loads and
stores over a sparse 32-bit address space, dispatching to memory-mapped
register banks and to device-owned RAM windows such as video memory.

Core Features:

    Memory-mapped I/O via a page keyed region table (4 KiB pages).
    RAM windows backed by VideoMemory, so every store marks dirty pages.
    Little-endian data for every width.
    Sealing: once the machine runs, the mapping table is frozen and further
    MapIO/MapRAM calls panic.

Accesses that hit nothing read as zero, drop the store and print a warning,
matching a bus without error responses.

The bus does no locking. BoardMachine serialises all access.
*/

package main

import "fmt"

const (
	BUS_PAGE_SHIFT = 12
	BUS_PAGE_SIZE  = 1 << BUS_PAGE_SHIFT
	BUS_PAGE_MASK  = ^uint32(BUS_PAGE_SIZE - 1)
)

type Bus32 interface {
	/*
		Bus32 is what a CPU core sees: plain loads and stores of every
		natural width plus a hard reset.
	*/

	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
	Read64(addr uint32) uint64
	Write64(addr uint32, value uint64)
	Reset()
}

type MachineBus struct {
	/*
		MachineBus implements Bus32 over a page keyed table of
		I/O regions and RAM windows.
	*/

	mapping map[uint32][]*IORegion
	regions []*IORegion

	sealed bool
}

type IORegion struct {
	/*
		IORegion is one mapped window [start, end]. Register banks
		provide callbacks that receive the offset from start and the
		access size in bytes; RAM windows are served from mem.
	*/
	name    string
	start   uint32
	end     uint32
	onRead  func(offset uint32, size int) uint64
	onWrite func(offset uint32, value uint64, size int)
	mem     *VideoMemory
}

func NewMachineBus() *MachineBus {
	return &MachineBus{
		mapping: make(map[uint32][]*IORegion),
	}
}

// SealMappings prevents further MapIO/MapRAM calls once the machine runs.
func (bus *MachineBus) SealMappings() {
	bus.sealed = true
}

// MapIO maps a register bank. Either callback may be nil.
func (bus *MachineBus) MapIO(name string, start, end uint32, onRead func(offset uint32, size int) uint64, onWrite func(offset uint32, value uint64, size int)) {
	bus.addRegion(&IORegion{
		name:    name,
		start:   start,
		end:     end,
		onRead:  onRead,
		onWrite: onWrite,
	})
}

// MapRAM maps a device-owned memory window starting at start.
func (bus *MachineBus) MapRAM(name string, start uint32, mem *VideoMemory) {
	bus.addRegion(&IORegion{
		name:  name,
		start: start,
		end:   start + uint32(mem.Size()) - 1,
		mem:   mem,
	})
}

func (bus *MachineBus) addRegion(region *IORegion) {
	if bus.sealed {
		panic(fmt.Sprintf("MapIO called after execution started (mapping %s $%08X-$%08X)", region.name, region.start, region.end))
	}
	if region.end < region.start {
		panic(fmt.Sprintf("MapIO %s: end $%08X before start $%08X", region.name, region.end, region.start))
	}
	for _, r := range bus.regions {
		if region.start <= r.end && r.start <= region.end {
			panic(fmt.Sprintf("MapIO %s $%08X-$%08X overlaps %s $%08X-$%08X",
				region.name, region.start, region.end, r.name, r.start, r.end))
		}
	}
	bus.regions = append(bus.regions, region)

	firstPage := region.start & BUS_PAGE_MASK
	lastPage := region.end & BUS_PAGE_MASK
	for page := firstPage; ; page += BUS_PAGE_SIZE {
		bus.mapping[page] = append(bus.mapping[page], region)
		if page == lastPage {
			break
		}
	}
}

func (bus *MachineBus) findRegion(addr uint32) *IORegion {
	for _, region := range bus.mapping[addr&BUS_PAGE_MASK] {
		if addr >= region.start && addr <= region.end {
			return region
		}
	}
	return nil
}

// Read performs a load of size bytes. ok is false when nothing is mapped.
func (bus *MachineBus) Read(addr uint32, size int) (value uint64, ok bool) {
	region := bus.findRegion(addr)
	if region == nil {
		return 0, false
	}
	offset := addr - region.start
	if region.mem != nil {
		return region.mem.Read(offset, size), true
	}
	if region.onRead == nil {
		return 0, true
	}
	return region.onRead(offset, size), true
}

// Write performs a store of size bytes. ok is false when nothing is mapped.
func (bus *MachineBus) Write(addr uint32, value uint64, size int) bool {
	region := bus.findRegion(addr)
	if region == nil {
		return false
	}
	offset := addr - region.start
	if region.mem != nil {
		region.mem.Write(offset, value, size)
		return true
	}
	if region.onWrite != nil {
		region.onWrite(offset, value, size)
	}
	return true
}

func (bus *MachineBus) read(addr uint32, size int) uint64 {
	value, ok := bus.Read(addr, size)
	if !ok {
		fmt.Printf("Warning: Read%d from unmapped address 0x%08X\n", size*8, addr)
	}
	return value
}

func (bus *MachineBus) write(addr uint32, value uint64, size int) {
	if !bus.Write(addr, value, size) {
		fmt.Printf("Warning: Write%d to unmapped address 0x%08X\n", size*8, addr)
	}
}

func (bus *MachineBus) Read8(addr uint32) uint8   { return uint8(bus.read(addr, 1)) }
func (bus *MachineBus) Read16(addr uint32) uint16 { return uint16(bus.read(addr, 2)) }
func (bus *MachineBus) Read32(addr uint32) uint32 { return uint32(bus.read(addr, 4)) }
func (bus *MachineBus) Read64(addr uint32) uint64 { return bus.read(addr, 8) }

func (bus *MachineBus) Write8(addr uint32, value uint8)   { bus.write(addr, uint64(value), 1) }
func (bus *MachineBus) Write16(addr uint32, value uint16) { bus.write(addr, uint64(value), 2) }
func (bus *MachineBus) Write32(addr uint32, value uint32) { bus.write(addr, uint64(value), 4) }
func (bus *MachineBus) Write64(addr uint32, value uint64) { bus.write(addr, value, 8) }

// Regions returns the mapped windows in mapping order.
func (bus *MachineBus) Regions() []*IORegion {
	return bus.regions
}

func (bus *MachineBus) Reset() {
	/*
		Reset clears every RAM window. Register banks are reset by
		their owning devices.
	*/

	for _, region := range bus.regions {
		if region.mem != nil {
			region.mem.Clear()
		}
	}
}
