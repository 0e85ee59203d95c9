package emu

import (
	"fmt"
	"os"
	"path/filepath"

	"famicore/emu/log"
	"famicore/hw/snapshot"
)

// NumStateSlots is the number of save state slots per ROM.
const NumStateSlots = 10

func (e *Emulator) slotPath(slot int) string {
	name := fmt.Sprintf("%08X-%d.state", e.NES.Rom.CRC(), slot)
	return filepath.Join(SavesDir(), name)
}

// SaveStateSlot snapshots the console into the given slot, overwriting any
// previous save.
func (e *Emulator) SaveStateSlot(slot int) error {
	if slot < 0 || slot >= NumStateSlots {
		return fmt.Errorf("state slot %d out of range", slot)
	}

	st := e.NES.SaveState()
	path := e.slotPath(slot)
	if err := os.WriteFile(path, st.Encode(), 0644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	log.ModEmu.InfoZ("state saved").
		Int("slot", int64(slot)).
		Uint64("frame", st.Frame).
		End()
	return nil
}

// LoadStateSlot restores the console from the given slot.
func (e *Emulator) LoadStateSlot(slot int) error {
	if slot < 0 || slot >= NumStateSlots {
		return fmt.Errorf("state slot %d out of range", slot)
	}

	data, err := os.ReadFile(e.slotPath(slot))
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	st, err := snapshot.Decode(data)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := e.NES.RestoreState(st); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	log.ModEmu.InfoZ("state loaded").
		Int("slot", int64(slot)).
		Uint64("frame", st.Frame).
		End()
	return nil
}

func (e *Emulator) batteryPath() string {
	return filepath.Join(SavesDir(), fmt.Sprintf("%08X.sav", e.NES.Rom.CRC()))
}

func (e *Emulator) loadBatteryRAM() {
	bb, ok := e.batteryBacked()
	if !ok {
		return
	}
	data, err := os.ReadFile(e.batteryPath())
	if err != nil {
		return // first run, nothing saved yet
	}
	copy(bb.BatteryRAM(), data)
	log.ModEmu.InfoZ("battery RAM loaded").String("path", e.batteryPath()).End()
}

func (e *Emulator) saveBatteryRAM() {
	bb, ok := e.batteryBacked()
	if !ok {
		return
	}
	if err := os.WriteFile(e.batteryPath(), bb.BatteryRAM(), 0644); err != nil {
		log.ModEmu.WarnZ("failed to save battery RAM").Error("err", err).End()
	}
}
