package jvs

// Checksum 计算 JVS 校验和：对逻辑字节（转义前）累加，byte 溢出自动丢弃高位
func Checksum(parts ...[]byte) byte {
	var sum byte
	for _, part := range parts {
		for _, b := range part {
			sum += b
		}
	}
	return sum
}

// Sum 返回包头与载荷的期望校验和
func (p *Packet) Sum() byte {
	return Checksum([]byte{p.Dest, p.Src, byte(len(p.Payload))}, p.Payload)
}
