package directory

import "io"

// progressReader reports how many bytes of the request body the transport
// has consumed so far
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	emit  func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.emit(p.read, p.total)
	}
	return n, err
}
