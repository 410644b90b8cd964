package packet

// Command encodes a control-channel command frame. The frame body is the
// UTF-8 bytes of "X<cmd>\n"; the leading placeholder byte is then
// overwritten with the length of the remaining payload.
func Command(cmd string) []byte {
	frame := []byte("X" + cmd + "\n")
	frame[0] = byte(len(frame) - 1)
	return frame
}
