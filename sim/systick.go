//go:build !tinygo

package sim

import "py32hal/device/py32"

type systick struct {
	mc  *Machine
	csr uint32
	rvr uint32
	cvr uint32
	acc uint32
}

func (s *systick) base() uint32 { return py32.SYSTICK_BASE }
func (s *systick) size() uint32 { return 0x10 }
func (s *systick) reset()       { *s = systick{mc: s.mc} }

func (s *systick) load(off uint32) uint32 {
	switch off {
	case py32.SYST_CSR:
		v := s.csr
		s.csr &^= 1 << py32.SYST_CSR_COUNTFLAG
		return v
	case py32.SYST_RVR:
		return s.rvr
	case py32.SYST_CVR:
		return s.cvr
	}
	return 0
}

func (s *systick) store(off, v uint32) {
	switch off {
	case py32.SYST_CSR:
		s.csr = s.csr&(1<<py32.SYST_CSR_COUNTFLAG) | v&0x7
	case py32.SYST_RVR:
		s.rvr = v & py32.SYST_RVR_MAX
	case py32.SYST_CVR:
		s.cvr = 0
		s.csr &^= 1 << py32.SYST_CSR_COUNTFLAG
	}
}

func (s *systick) step(cycles uint32) {
	if s.csr&(1<<py32.SYST_CSR_ENABLE) == 0 {
		return
	}
	if s.csr&(1<<py32.SYST_CSR_CLKSOURCE) == 0 {
		s.acc += cycles
		cycles = s.acc / 8
		s.acc %= 8
	}
	for cycles > 0 {
		if s.cvr == 0 {
			s.cvr = s.rvr
			if s.rvr == 0 {
				return
			}
			cycles--
			continue
		}
		if cycles < s.cvr {
			s.cvr -= cycles
			return
		}
		cycles -= s.cvr
		s.cvr = 0
		s.csr |= 1 << py32.SYST_CSR_COUNTFLAG
		if s.csr&(1<<py32.SYST_CSR_TICKINT) != 0 {
			s.mc.nvic.raise(py32.IRQ_SysTick)
		}
	}
}
