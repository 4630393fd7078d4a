package periph

import (
	"testing"

	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/sim"
)

func TestClaimLifecycle(t *testing.T) {
	sim.Reset()
	ResetClaims()
	r := NewRegistry()

	tests := []struct {
		tok *Token
		enr uint32
		bit uint
	}{
		{r.USART1, py32.RCC_APBENR2, py32.RCC_APB2_USART1},
		{r.USART2, py32.RCC_APBENR1, py32.RCC_APB1_USART2},
		{r.GPIOB, py32.RCC_IOPENR, py32.RCC_IOP_GPIOB},
		{r.DMA, py32.RCC_AHBENR, py32.RCC_AHB_DMA},
		{r.TIM17, py32.RCC_APBENR2, py32.RCC_APB2_TIM17},
	}
	for _, tt := range tests {
		t.Run(tt.tok.ID().String(), func(t *testing.T) {
			if sim.ClockEnabled(tt.enr, tt.bit) {
				t.Fatal("clock on before claim")
			}
			if err := tt.tok.Claim(); err != nil {
				t.Fatal(err)
			}
			if !sim.ClockEnabled(tt.enr, tt.bit) || !tt.tok.ID().ClockOn() {
				t.Error("clock off while claimed")
			}
			if err := tt.tok.Claim(); errcode.Of(err) != errcode.InUse {
				t.Errorf("second claim err = %v, want in_use", err)
			}
			tt.tok.Release()
			if sim.ClockEnabled(tt.enr, tt.bit) {
				t.Error("clock on after release")
			}
			if tt.tok.Claimed() {
				t.Error("still claimed after release")
			}
			if err := tt.tok.Claim(); err != nil {
				t.Errorf("claim after release: %v", err)
			}
			tt.tok.Release()
		})
	}
}

func TestTakeOnce(t *testing.T) {
	ResetClaims()
	if _, err := Take(); err != nil {
		t.Fatal(err)
	}
	if _, err := Take(); errcode.Of(err) != errcode.AlreadyInitialized {
		t.Errorf("second Take err = %v", err)
	}
	ResetClaims()
}

func TestIDString(t *testing.T) {
	for id := ID(0); id < NumIDs; id++ {
		if id.String() == "" {
			t.Errorf("ID %d has no name", id)
		}
	}
	if NumIDs.String() != "periph?" {
		t.Errorf("out of range name = %q", NumIDs.String())
	}
}
