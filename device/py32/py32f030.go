// Package py32 holds the PY32F030 memory map: peripheral base addresses,
// register offsets, bit positions and interrupt numbers.
//
// Names follow the reference manual: PERIPH_REG_FIELD. Single-bit fields are
// bit positions; multi-bit fields have a _Pos and a _Len constant.
package py32

// Peripheral base addresses.
const (
	TIM3_BASE   = 0x40000400
	TIM14_BASE  = 0x40002000
	RTC_BASE    = 0x40002800
	IWDG_BASE   = 0x40003000
	SPI2_BASE   = 0x40003800
	USART2_BASE = 0x40004400
	I2C_BASE    = 0x40005400
	PWR_BASE    = 0x40007000
	SYSCFG_BASE = 0x40010000
	ADC_BASE    = 0x40012400
	TIM1_BASE   = 0x40012C00
	SPI1_BASE   = 0x40013000
	USART1_BASE = 0x40013800
	TIM16_BASE  = 0x40014400
	TIM17_BASE  = 0x40014800

	DMA_BASE   = 0x40020000
	RCC_BASE   = 0x40021000
	EXTI_BASE  = 0x40021800
	FLASH_BASE = 0x40022000
	CRC_BASE   = 0x40023000

	GPIOA_BASE = 0x50000000
	GPIOB_BASE = 0x50000400
	GPIOF_BASE = 0x50001400

	SYSTICK_BASE = 0xE000E010
	NVIC_BASE    = 0xE000E100
	SCB_BASE     = 0xE000ED00
)

// Memory regions.
const (
	FLASH_MEM_BASE  = 0x08000000
	FLASH_MEM_SIZE  = 64 * 1024
	FLASH_PAGE_SIZE = 128
	FLASH_SECT_SIZE = 4 * 1024
	FLASH_SECTORS   = 16

	SRAM_BASE = 0x20000000
	SRAM_SIZE = 8 * 1024

	UID_BASE = 0x1FFF0E00
	UID_SIZE = 16

	// Factory HSI trim words, one per HSI_FS setting.
	HSI_TRIM_BASE = 0x1FFF0F00

	// Temperature sensor calibration at 30 and 85 degrees C, VDDA = 3.3 V.
	TS_CAL1_ADDR = 0x1FFF0F14
	TS_CAL2_ADDR = 0x1FFF0F18
	TS_CAL1_TEMP = 30
	TS_CAL2_TEMP = 85
	VREFINT_MV   = 1200
	VDDA_CAL_MV  = 3300
)

// Interrupt numbers. SysTick is a core exception, not an NVIC line.
const (
	IRQ_SysTick             = -1
	IRQ_RTC                 = 2
	IRQ_FLASH               = 3
	IRQ_EXTI0_1             = 5
	IRQ_EXTI2_3             = 6
	IRQ_EXTI4_15            = 7
	IRQ_DMA1_CHANNEL1       = 9
	IRQ_DMA1_CHANNEL2_3     = 10
	IRQ_ADC_COMP            = 12
	IRQ_TIM1_BRK_UP_TRG_COM = 13
	IRQ_TIM1_CC             = 14
	IRQ_TIM3                = 16
	IRQ_TIM14               = 19
	IRQ_TIM16               = 21
	IRQ_TIM17               = 22
	IRQ_I2C1                = 23
	IRQ_SPI1                = 25
	IRQ_SPI2                = 26
	IRQ_USART1              = 27
	IRQ_USART2              = 28

	IRQ_MAX = 32
)
