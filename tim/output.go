package tim

import (
	"py32hal/gpio"
	"py32hal/periph"
)

// Output is a timer signal on a pin that can carry it. Build one with the
// constructor named after the signal and pass it to PWM.Attach.
type Output struct {
	id  periph.ID
	ch  Channel // 0 for the break input
	pin gpio.Pin
	af  gpio.AF
}

func TIM1CH1(p gpio.TIM1CH1Pin) Output   { return Output{periph.TIM1, CH1, p, p.TIM1CH1()} }
func TIM1CH2(p gpio.TIM1CH2Pin) Output   { return Output{periph.TIM1, CH2, p, p.TIM1CH2()} }
func TIM1CH3(p gpio.TIM1CH3Pin) Output   { return Output{periph.TIM1, CH3, p, p.TIM1CH3()} }
func TIM1CH4(p gpio.TIM1CH4Pin) Output   { return Output{periph.TIM1, CH4, p, p.TIM1CH4()} }
func TIM1CH1N(p gpio.TIM1CH1NPin) Output { return Output{periph.TIM1, CH1, p, p.TIM1CH1N()} }
func TIM1CH2N(p gpio.TIM1CH2NPin) Output { return Output{periph.TIM1, CH2, p, p.TIM1CH2N()} }
func TIM1CH3N(p gpio.TIM1CH3NPin) Output { return Output{periph.TIM1, CH3, p, p.TIM1CH3N()} }
func TIM1BKIN(p gpio.TIM1BKINPin) Output { return Output{periph.TIM1, 0, p, p.TIM1BKIN()} }

func TIM3CH1(p gpio.TIM3CH1Pin) Output { return Output{periph.TIM3, CH1, p, p.TIM3CH1()} }
func TIM3CH2(p gpio.TIM3CH2Pin) Output { return Output{periph.TIM3, CH2, p, p.TIM3CH2()} }
func TIM3CH3(p gpio.TIM3CH3Pin) Output { return Output{periph.TIM3, CH3, p, p.TIM3CH3()} }
func TIM3CH4(p gpio.TIM3CH4Pin) Output { return Output{periph.TIM3, CH4, p, p.TIM3CH4()} }

func TIM14CH1(p gpio.TIM14CH1Pin) Output   { return Output{periph.TIM14, CH1, p, p.TIM14CH1()} }
func TIM16CH1(p gpio.TIM16CH1Pin) Output   { return Output{periph.TIM16, CH1, p, p.TIM16CH1()} }
func TIM16CH1N(p gpio.TIM16CH1NPin) Output { return Output{periph.TIM16, CH1, p, p.TIM16CH1N()} }
func TIM17CH1(p gpio.TIM17CH1Pin) Output   { return Output{periph.TIM17, CH1, p, p.TIM17CH1()} }
func TIM17CH1N(p gpio.TIM17CH1NPin) Output { return Output{periph.TIM17, CH1, p, p.TIM17CH1N()} }
