package core

// Number formatting without fmt, which is too large for the part's flash.

func formatUint(n uint64, buf []byte) int {
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			return i
		}
	}
}

func itoa(n int) string {
	var buf [21]byte
	if n < 0 {
		i := formatUint(uint64(-int64(n)), buf[:])
		i--
		buf[i] = '-'
		return string(buf[i:])
	}
	return string(buf[formatUint(uint64(n), buf[:]):])
}

func utoa(n uint32) string {
	var buf [10]byte
	return string(buf[formatUint(uint64(n), buf[:]):])
}

const hexDigits = "0123456789abcdef"

// htoa formats n as 0x-prefixed hex, eight digits.
func htoa(n uint32) string {
	var buf [10]byte
	buf[0] = '0'
	buf[1] = 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return string(buf[:])
}

// Itoa, Utoa and Htoa are exported for drivers that build log lines.
func Itoa(n int) string    { return itoa(n) }
func Utoa(n uint32) string { return utoa(n) }
func Htoa(n uint32) string { return htoa(n) }
