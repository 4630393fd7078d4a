//go:build tinygo

package irq

import (
	"runtime/interrupt"

	"py32hal/device/py32"
)

// interrupt.New wants a constant line number, hence one call per vector.
func init() {
	interrupt.New(py32.IRQ_EXTI0_1, func(interrupt.Interrupt) { Dispatch(py32.IRQ_EXTI0_1) })
	interrupt.New(py32.IRQ_EXTI2_3, func(interrupt.Interrupt) { Dispatch(py32.IRQ_EXTI2_3) })
	interrupt.New(py32.IRQ_EXTI4_15, func(interrupt.Interrupt) { Dispatch(py32.IRQ_EXTI4_15) })
	interrupt.New(py32.IRQ_DMA1_CHANNEL1, func(interrupt.Interrupt) { Dispatch(py32.IRQ_DMA1_CHANNEL1) })
	interrupt.New(py32.IRQ_DMA1_CHANNEL2_3, func(interrupt.Interrupt) { Dispatch(py32.IRQ_DMA1_CHANNEL2_3) })
	interrupt.New(py32.IRQ_ADC_COMP, func(interrupt.Interrupt) { Dispatch(py32.IRQ_ADC_COMP) })
	interrupt.New(py32.IRQ_TIM1_BRK_UP_TRG_COM, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM1_BRK_UP_TRG_COM) })
	interrupt.New(py32.IRQ_TIM1_CC, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM1_CC) })
	interrupt.New(py32.IRQ_TIM3, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM3) })
	interrupt.New(py32.IRQ_TIM14, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM14) })
	interrupt.New(py32.IRQ_TIM16, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM16) })
	interrupt.New(py32.IRQ_TIM17, func(interrupt.Interrupt) { Dispatch(py32.IRQ_TIM17) })
	interrupt.New(py32.IRQ_I2C1, func(interrupt.Interrupt) { Dispatch(py32.IRQ_I2C1) })
	interrupt.New(py32.IRQ_SPI1, func(interrupt.Interrupt) { Dispatch(py32.IRQ_SPI1) })
	interrupt.New(py32.IRQ_SPI2, func(interrupt.Interrupt) { Dispatch(py32.IRQ_SPI2) })
	interrupt.New(py32.IRQ_USART1, func(interrupt.Interrupt) { Dispatch(py32.IRQ_USART1) })
	interrupt.New(py32.IRQ_USART2, func(interrupt.Interrupt) { Dispatch(py32.IRQ_USART2) })
	interrupt.New(py32.IRQ_RTC, func(interrupt.Interrupt) { Dispatch(py32.IRQ_RTC) })
}

//export SysTick_Handler
func sysTickHandler() {
	Dispatch(py32.IRQ_SysTick)
}
