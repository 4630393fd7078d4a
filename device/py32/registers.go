package py32

// RCC
const (
	RCC_CR       = 0x00
	RCC_ICSCR    = 0x04
	RCC_CFGR     = 0x08
	RCC_PLLCFGR  = 0x0C
	RCC_ECSCR    = 0x10
	RCC_IOPRSTR  = 0x24
	RCC_AHBRSTR  = 0x28
	RCC_APBRSTR1 = 0x2C
	RCC_APBRSTR2 = 0x30
	RCC_IOPENR   = 0x34
	RCC_AHBENR   = 0x38
	RCC_APBENR1  = 0x3C
	RCC_APBENR2  = 0x40
	RCC_BDCR     = 0x5C
	RCC_CSR      = 0x60

	RCC_CR_HSION      = 8
	RCC_CR_HSIRDY     = 10
	RCC_CR_HSIDIV_Pos = 11
	RCC_CR_HSIDIV_Len = 3
	RCC_CR_HSEON      = 16
	RCC_CR_HSERDY     = 17
	RCC_CR_HSEBYP     = 18
	RCC_CR_PLLON      = 24
	RCC_CR_PLLRDY     = 25

	RCC_ICSCR_HSI_TRIM_Pos = 0
	RCC_ICSCR_HSI_TRIM_Len = 13
	RCC_ICSCR_HSI_FS_Pos   = 13
	RCC_ICSCR_HSI_FS_Len   = 3

	RCC_CFGR_SW_Pos     = 0
	RCC_CFGR_SW_Len     = 3
	RCC_CFGR_SWS_Pos    = 3
	RCC_CFGR_SWS_Len    = 3
	RCC_CFGR_HPRE_Pos   = 8
	RCC_CFGR_HPRE_Len   = 4
	RCC_CFGR_PPRE_Pos   = 12
	RCC_CFGR_PPRE_Len   = 3
	RCC_CFGR_MCOSEL_Pos = 24
	RCC_CFGR_MCOSEL_Len = 4
	RCC_CFGR_MCOPRE_Pos = 28
	RCC_CFGR_MCOPRE_Len = 3

	RCC_PLLCFGR_PLLSRC = 0

	RCC_ECSCR_HSE_DRV_Pos = 16
	RCC_ECSCR_HSE_DRV_Len = 2

	RCC_BDCR_LSEON      = 0
	RCC_BDCR_LSERDY     = 1
	RCC_BDCR_LSEBYP     = 2
	RCC_BDCR_RTCSEL_Pos = 8
	RCC_BDCR_RTCSEL_Len = 2
	RCC_BDCR_RTCEN      = 15
	RCC_BDCR_BDRST      = 16

	RCC_CSR_LSION  = 0
	RCC_CSR_LSIRDY = 1

	// SW / SWS encodings.
	RCC_SW_HSISYS = 0
	RCC_SW_HSE    = 1
	RCC_SW_PLL    = 2
	RCC_SW_LSI    = 3
	RCC_SW_LSE    = 4
)

// Clock enable and reset bit positions, shared by the ENR and RSTR pairs.
const (
	RCC_IOP_GPIOA = 0
	RCC_IOP_GPIOB = 1
	RCC_IOP_GPIOF = 5

	RCC_AHB_DMA   = 0
	RCC_AHB_FLASH = 8
	RCC_AHB_CRC   = 12

	RCC_APB1_TIM3   = 1
	RCC_APB1_RTCAPB = 10
	RCC_APB1_WWDG   = 11
	RCC_APB1_SPI2   = 14
	RCC_APB1_USART2 = 17
	RCC_APB1_I2C    = 21
	RCC_APB1_PWR    = 28

	RCC_APB2_SYSCFG = 0
	RCC_APB2_TIM1   = 11
	RCC_APB2_SPI1   = 12
	RCC_APB2_USART1 = 14
	RCC_APB2_TIM14  = 15
	RCC_APB2_TIM16  = 17
	RCC_APB2_TIM17  = 18
	RCC_APB2_ADC    = 20
)

// PWR
const (
	PWR_CR1     = 0x00
	PWR_CR1_DBP = 8
)

// SYSCFG
const (
	SYSCFG_CFGR1 = 0x00
	SYSCFG_CFGR3 = 0x0C

	// DMA channel n request selector sits at 8*(n-1) in CFGR3.
	SYSCFG_CFGR3_DMA_MAP_Len = 5
)

// DMA request selector values.
const (
	DMA_REQ_ADC       = 0
	DMA_REQ_SPI1_TX   = 1
	DMA_REQ_SPI1_RX   = 2
	DMA_REQ_SPI2_TX   = 3
	DMA_REQ_SPI2_RX   = 4
	DMA_REQ_USART1_TX = 5
	DMA_REQ_USART1_RX = 6
	DMA_REQ_USART2_TX = 7
	DMA_REQ_USART2_RX = 8
	DMA_REQ_I2C_TX    = 9
	DMA_REQ_I2C_RX    = 10
	DMA_REQ_TIM1_CH1  = 11
	DMA_REQ_TIM1_CH2  = 12
	DMA_REQ_TIM1_CH3  = 13
	DMA_REQ_TIM1_CH4  = 14
	DMA_REQ_TIM1_TRIG = 15
	DMA_REQ_TIM1_UP   = 16
	DMA_REQ_TIM3_CH1  = 17
	DMA_REQ_TIM3_CH3  = 18
	DMA_REQ_TIM3_CH4  = 19
	DMA_REQ_TIM3_TRIG = 20
	DMA_REQ_TIM3_UP   = 21
	DMA_REQ_TIM16_CH1 = 23
	DMA_REQ_TIM16_UP  = 24
	DMA_REQ_TIM17_CH1 = 25
	DMA_REQ_TIM17_UP  = 26
)

// GPIO
const (
	GPIO_MODER   = 0x00
	GPIO_OTYPER  = 0x04
	GPIO_OSPEEDR = 0x08
	GPIO_PUPDR   = 0x0C
	GPIO_IDR     = 0x10
	GPIO_ODR     = 0x14
	GPIO_BSRR    = 0x18
	GPIO_LCKR    = 0x1C
	GPIO_AFRL    = 0x20
	GPIO_AFRH    = 0x24
	GPIO_BRR     = 0x28

	GPIO_LCKR_LCKK = 16

	GPIO_MODE_INPUT  = 0
	GPIO_MODE_OUTPUT = 1
	GPIO_MODE_ALT    = 2
	GPIO_MODE_ANALOG = 3
)

// EXTI
const (
	EXTI_RTSR    = 0x00
	EXTI_FTSR    = 0x04
	EXTI_SWIER   = 0x08
	EXTI_PR      = 0x0C
	EXTI_EXTICR1 = 0x60
	EXTI_IMR     = 0x80
	EXTI_EMR     = 0x84

	// Port selector codes for EXTICR.
	EXTI_PORT_A = 0
	EXTI_PORT_B = 1
	EXTI_PORT_F = 2
)

// DMA. Channel registers repeat every DMA_CH_STRIDE bytes from DMA_CCR1.
const (
	DMA_ISR       = 0x00
	DMA_IFCR      = 0x04
	DMA_CCR1      = 0x08
	DMA_CH_STRIDE = 0x14
	DMA_CCR       = 0x00
	DMA_CNDTR     = 0x04
	DMA_CPAR      = 0x08
	DMA_CMAR      = 0x0C

	// ISR/IFCR flags for channel n sit at 4*(n-1).
	DMA_ISR_GIF  = 0
	DMA_ISR_TCIF = 1
	DMA_ISR_HTIF = 2
	DMA_ISR_TEIF = 3

	DMA_CCR_EN        = 0
	DMA_CCR_TCIE      = 1
	DMA_CCR_HTIE      = 2
	DMA_CCR_TEIE      = 3
	DMA_CCR_DIR       = 4
	DMA_CCR_CIRC      = 5
	DMA_CCR_PINC      = 6
	DMA_CCR_MINC      = 7
	DMA_CCR_PSIZE_Pos = 8
	DMA_CCR_MSIZE_Pos = 10
	DMA_CCR_SIZE_Len  = 2
	DMA_CCR_PL_Pos    = 12
	DMA_CCR_PL_Len    = 2
	DMA_CCR_MEM2MEM   = 14

	DMA_CHANNELS = 3
)

// TIM
const (
	TIM_CR1   = 0x00
	TIM_CR2   = 0x04
	TIM_SMCR  = 0x08
	TIM_DIER  = 0x0C
	TIM_SR    = 0x10
	TIM_EGR   = 0x14
	TIM_CCMR1 = 0x18
	TIM_CCMR2 = 0x1C
	TIM_CCER  = 0x20
	TIM_CNT   = 0x24
	TIM_PSC   = 0x28
	TIM_ARR   = 0x2C
	TIM_RCR   = 0x30
	TIM_CCR1  = 0x34
	TIM_BDTR  = 0x44

	TIM_CR1_CEN     = 0
	TIM_CR1_UDIS    = 1
	TIM_CR1_URS     = 2
	TIM_CR1_OPM     = 3
	TIM_CR1_DIR     = 4
	TIM_CR1_CMS_Pos = 5
	TIM_CR1_CMS_Len = 2
	TIM_CR1_ARPE    = 7

	// Output idle state for channel n at TIM_CR2_OIS1+2*(n-1); N output one above.
	TIM_CR2_OIS1 = 8

	TIM_DIER_UIE = 0
	TIM_SR_UIF   = 0
	TIM_SR_CC1IF = 1
	TIM_SR_COMIF = 5
	TIM_SR_TIF   = 6
	TIM_SR_BIF   = 7
	TIM_EGR_UG   = 0

	// Per-channel fields within CCMRx, channel slot is 8 bits wide.
	TIM_CCMR_CCS_Pos = 0
	TIM_CCMR_CCS_Len = 2
	TIM_CCMR_OCPE    = 3
	TIM_CCMR_OCM_Pos = 4
	TIM_CCMR_OCM_Len = 3

	// Per-channel bits within CCER, channel slot is 4 bits wide.
	TIM_CCER_CCE  = 0
	TIM_CCER_CCP  = 1
	TIM_CCER_CCNE = 2
	TIM_CCER_CCNP = 3

	TIM_BDTR_DTG_Pos = 0
	TIM_BDTR_DTG_Len = 8
	TIM_BDTR_BKE     = 12
	TIM_BDTR_BKP     = 13
	TIM_BDTR_AOE     = 14
	TIM_BDTR_MOE     = 15
)

// USART
const (
	USART_SR  = 0x00
	USART_DR  = 0x04
	USART_BRR = 0x08
	USART_CR1 = 0x0C
	USART_CR2 = 0x10
	USART_CR3 = 0x14

	USART_SR_PE   = 0
	USART_SR_FE   = 1
	USART_SR_NE   = 2
	USART_SR_ORE  = 3
	USART_SR_IDLE = 4
	USART_SR_RXNE = 5
	USART_SR_TC   = 6
	USART_SR_TXE  = 7

	USART_CR1_RE     = 2
	USART_CR1_TE     = 3
	USART_CR1_IDLEIE = 4
	USART_CR1_RXNEIE = 5
	USART_CR1_TCIE   = 6
	USART_CR1_TXEIE  = 7
	USART_CR1_PEIE   = 8
	USART_CR1_PS     = 9
	USART_CR1_PCE    = 10
	USART_CR1_M      = 12
	USART_CR1_UE     = 13
	USART_CR1_OVER8  = 15

	USART_CR2_STOP_Pos = 12
	USART_CR2_STOP_Len = 2

	USART_CR3_EIE   = 0
	USART_CR3_HDSEL = 3
	USART_CR3_DMAR  = 6
	USART_CR3_DMAT  = 7
)

// I2C
const (
	I2C_CR1   = 0x00
	I2C_CR2   = 0x04
	I2C_OAR1  = 0x08
	I2C_DR    = 0x10
	I2C_SR1   = 0x14
	I2C_SR2   = 0x18
	I2C_CCR   = 0x1C
	I2C_TRISE = 0x20

	I2C_CR1_PE    = 0
	I2C_CR1_START = 8
	I2C_CR1_STOP  = 9
	I2C_CR1_ACK   = 10
	I2C_CR1_POS   = 11
	I2C_CR1_SWRST = 15

	I2C_CR2_FREQ_Pos = 0
	I2C_CR2_FREQ_Len = 6
	I2C_CR2_ITERREN  = 8
	I2C_CR2_ITEVTEN  = 9
	I2C_CR2_ITBUFEN  = 10

	I2C_OAR1_ADD_Pos = 1
	I2C_OAR1_ADD_Len = 7

	I2C_SR1_SB    = 0
	I2C_SR1_ADDR  = 1
	I2C_SR1_BTF   = 2
	I2C_SR1_STOPF = 4
	I2C_SR1_RXNE  = 6
	I2C_SR1_TXE   = 7
	I2C_SR1_BERR  = 8
	I2C_SR1_ARLO  = 9
	I2C_SR1_AF    = 10
	I2C_SR1_OVR   = 11

	I2C_SR2_MSL  = 0
	I2C_SR2_BUSY = 1
	I2C_SR2_TRA  = 2

	I2C_CCR_CCR_Pos = 0
	I2C_CCR_CCR_Len = 12
	I2C_CCR_DUTY    = 14
	I2C_CCR_FS      = 15
)

// SPI
const (
	SPI_CR1 = 0x00
	SPI_CR2 = 0x04
	SPI_SR  = 0x08
	SPI_DR  = 0x0C

	SPI_CR1_CPHA     = 0
	SPI_CR1_CPOL     = 1
	SPI_CR1_MSTR     = 2
	SPI_CR1_BR_Pos   = 3
	SPI_CR1_BR_Len   = 3
	SPI_CR1_SPE      = 6
	SPI_CR1_LSBFIRST = 7
	SPI_CR1_SSI      = 8
	SPI_CR1_SSM      = 9
	SPI_CR1_RXONLY   = 10
	SPI_CR1_DFF      = 11
	SPI_CR1_BIDIOE   = 14
	SPI_CR1_BIDIMODE = 15

	SPI_CR2_RXDMAEN = 0
	SPI_CR2_TXDMAEN = 1
	SPI_CR2_SSOE    = 2
	SPI_CR2_ERRIE   = 5
	SPI_CR2_RXNEIE  = 6
	SPI_CR2_TXEIE   = 7

	SPI_SR_RXNE = 0
	SPI_SR_TXE  = 1
	SPI_SR_MODF = 5
	SPI_SR_OVR  = 6
	SPI_SR_BSY  = 7
)

// ADC
const (
	ADC_ISR    = 0x00
	ADC_IER    = 0x04
	ADC_CR     = 0x08
	ADC_CFGR1  = 0x0C
	ADC_CFGR2  = 0x10
	ADC_SMPR   = 0x14
	ADC_CHSELR = 0x28
	ADC_DR     = 0x40
	ADC_CCSR   = 0x44
	ADC_CCR    = 0x308

	ADC_ISR_EOSMP = 1
	ADC_ISR_EOC   = 2
	ADC_ISR_EOSEQ = 3
	ADC_ISR_OVR   = 4

	ADC_CR_ADEN    = 0
	ADC_CR_ADSTART = 2
	ADC_CR_ADSTP   = 4
	ADC_CR_ADCAL   = 31

	ADC_CFGR1_DMAEN      = 0
	ADC_CFGR1_DMACFG     = 1
	ADC_CFGR1_SCANDIR    = 2
	ADC_CFGR1_RES_Pos    = 3
	ADC_CFGR1_RES_Len    = 2
	ADC_CFGR1_ALIGN      = 5
	ADC_CFGR1_EXTSEL_Pos = 6
	ADC_CFGR1_EXTSEL_Len = 3
	ADC_CFGR1_EXTEN_Pos  = 10
	ADC_CFGR1_EXTEN_Len  = 2
	ADC_CFGR1_OVRMOD     = 12
	ADC_CFGR1_CONT       = 13
	ADC_CFGR1_WAIT       = 14
	ADC_CFGR1_DISCEN     = 16

	ADC_SMPR_SMP_Pos = 0
	ADC_SMPR_SMP_Len = 3

	ADC_CCSR_CALFAIL = 30
	ADC_CCSR_CALON   = 31

	ADC_CCR_VREFEN = 22
	ADC_CCR_TSEN   = 23

	ADC_CH_TEMP   = 11
	ADC_CH_VREF   = 12
	ADC_CHANNELS  = 13
	ADC_CAL_LOOPS = 1000
)

// RTC
const (
	RTC_CRH  = 0x00
	RTC_CRL  = 0x04
	RTC_PRLH = 0x08
	RTC_PRLL = 0x0C
	RTC_DIVH = 0x10
	RTC_DIVL = 0x14
	RTC_CNTH = 0x18
	RTC_CNTL = 0x1C
	RTC_ALRH = 0x20
	RTC_ALRL = 0x24

	RTC_CRH_SECIE = 0
	RTC_CRH_ALRIE = 1
	RTC_CRH_OWIE  = 2

	RTC_CRL_SECF  = 0
	RTC_CRL_ALRF  = 1
	RTC_CRL_OWF   = 2
	RTC_CRL_RSF   = 3
	RTC_CRL_CNF   = 4
	RTC_CRL_RTOFF = 5

	// BDCR RTCSEL encodings.
	RTC_SEL_NONE  = 0
	RTC_SEL_LSE   = 1
	RTC_SEL_LSI   = 2
	RTC_SEL_HSE32 = 3
)

// IWDG
const (
	IWDG_KR  = 0x00
	IWDG_PR  = 0x04
	IWDG_RLR = 0x08
	IWDG_SR  = 0x0C

	IWDG_KEY_ENABLE = 0xCCCC
	IWDG_KEY_RELOAD = 0xAAAA
	IWDG_KEY_ACCESS = 0x5555

	IWDG_SR_PVU = 0
	IWDG_SR_RVU = 1

	IWDG_RLR_MAX = 0xFFF
)

// CRC
const (
	CRC_DR  = 0x00
	CRC_IDR = 0x04
	CRC_CR  = 0x08

	CRC_CR_RESET = 0
)

// FLASH
const (
	FLASH_ACR     = 0x00
	FLASH_KEYR    = 0x08
	FLASH_OPTKEYR = 0x0C
	FLASH_SR      = 0x10
	FLASH_CR      = 0x14

	FLASH_ACR_LATENCY = 0

	FLASH_SR_EOP    = 0
	FLASH_SR_WRPERR = 4
	FLASH_SR_BSY    = 16

	FLASH_CR_PG     = 0
	FLASH_CR_PER    = 1
	FLASH_CR_MER    = 2
	FLASH_CR_SER    = 11
	FLASH_CR_PGSTRT = 19
	FLASH_CR_EOPIE  = 24
	FLASH_CR_LOCK   = 31

	FLASH_KEY1 = 0x45670123
	FLASH_KEY2 = 0xCDEF89AB
)

// SysTick
const (
	SYST_CSR = 0x00
	SYST_RVR = 0x04
	SYST_CVR = 0x08

	SYST_CSR_ENABLE    = 0
	SYST_CSR_TICKINT   = 1
	SYST_CSR_CLKSOURCE = 2
	SYST_CSR_COUNTFLAG = 16

	SYST_RVR_MAX = 0xFFFFFF
)

// NVIC register offsets from NVIC_BASE.
const (
	NVIC_ISER = 0x000
	NVIC_ICER = 0x080
	NVIC_ISPR = 0x100
	NVIC_ICPR = 0x180
	NVIC_IPR  = 0x300
)
