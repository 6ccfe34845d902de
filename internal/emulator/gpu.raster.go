package emulator

// Software rasterizer backing GPU.VRAM. Polygon vertices are also pushed
// to DrawData for the hardware-accelerated EbitenRenderer path; this file
// additionally rasterizes them directly into VRAM so that reads, blits
// and dumps taken straight from VRAM see the result of a draw without
// waiting on a frame from the display renderer

// Packs 8 bit RGB into 15 bit BGR555, VRAM's native pixel format
func bgr555(r, g, b uint8) uint16 {
	return uint16(r>>3) | uint16(g>>3)<<5 | uint16(b>>3)<<10
}

func clampColorF(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func min3i16(a, b, c int16) int16 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3i16(a, b, c int16) int16 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// Signed area of the triangle (a,b,c), doubled. Also the standard edge
// function used to test point `c` against the edge a->b
func edgeFunction(a, b, c Vec2) int32 {
	return int32(b.X-a.X)*int32(c.Y-a.Y) - int32(b.Y-a.Y)*int32(c.X-a.X)
}

// Rasterizes a single triangle into VRAM, applying the drawing offset and
// clipping to both the drawing area and VRAM's own bounds
func (gpu *GPU) rasterTriangle(v0, v1, v2 Vertex) {
	p0 := Vec2{X: v0.Position.X + gpu.DrawingXOffset, Y: v0.Position.Y + gpu.DrawingYOffset}
	p1 := Vec2{X: v1.Position.X + gpu.DrawingXOffset, Y: v1.Position.Y + gpu.DrawingYOffset}
	p2 := Vec2{X: v2.Position.X + gpu.DrawingXOffset, Y: v2.Position.Y + gpu.DrawingYOffset}

	area := edgeFunction(p0, p1, p2)
	if area == 0 {
		return // degenerate triangle
	}

	minX := min3i16(p0.X, p1.X, p2.X)
	maxX := max3i16(p0.X, p1.X, p2.X)
	minY := min3i16(p0.Y, p1.Y, p2.Y)
	maxY := max3i16(p0.Y, p1.Y, p2.Y)

	if minX < int16(gpu.DrawingAreaLeft) {
		minX = int16(gpu.DrawingAreaLeft)
	}
	if minY < int16(gpu.DrawingAreaTop) {
		minY = int16(gpu.DrawingAreaTop)
	}
	if maxX > int16(gpu.DrawingAreaRight) {
		maxX = int16(gpu.DrawingAreaRight)
	}
	if maxY > int16(gpu.DrawingAreaBottom) {
		maxY = int16(gpu.DrawingAreaBottom)
	}
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > VRAM_WIDTH-1 {
		maxX = VRAM_WIDTH - 1
	}
	if maxY > VRAM_HEIGHT-1 {
		maxY = VRAM_HEIGHT - 1
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := Vec2{X: x, Y: y}
			w0 := edgeFunction(p1, p2, p)
			w1 := edgeFunction(p2, p0, p)
			w2 := edgeFunction(p0, p1, p)

			inside := (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
			if !inside {
				continue
			}

			b0 := float64(w0) / float64(area)
			b1 := float64(w1) / float64(area)
			b2 := float64(w2) / float64(area)

			r := clampColorF(b0*float64(v0.Color.R) + b1*float64(v1.Color.R) + b2*float64(v2.Color.R))
			g := clampColorF(b0*float64(v0.Color.G) + b1*float64(v1.Color.G) + b2*float64(v2.Color.G))
			bl := clampColorF(b0*float64(v0.Color.B) + b1*float64(v1.Color.B) + b2*float64(v2.Color.B))

			gpu.VRAM.Set(uint16(x), uint16(y), bgr555(r, g, bl))
		}
	}
}

// GP0(0x20/0x22): monochrome opaque/semi-transparent triangle
func (gpu *GPU) gp0MonochromeTriangle() {
	clr := ColorFromGP0(gpu.GP0Command.Get(0))
	v0 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(1)), clr)
	v1 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(2)), clr)
	v2 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(3)), clr)

	gpu.DrawData.PushVertices(v0, v1, v2)
	gpu.rasterTriangle(v0, v1, v2)
}

// GP0(0x28/0x2A): monochrome opaque/semi-transparent quad
func (gpu *GPU) gp0MonochromeQuad() {
	clr := ColorFromGP0(gpu.GP0Command.Get(0))
	v0 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(1)), clr)
	v1 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(2)), clr)
	v2 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(3)), clr)
	v3 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(4)), clr)

	gpu.DrawData.PushQuad(v0, v1, v2, v3)
	gpu.rasterTriangle(v0, v1, v2)
	gpu.rasterTriangle(v1, v2, v3)
}

// GP0(0x30/0x32): Gouraud-shaded opaque/semi-transparent triangle
func (gpu *GPU) gp0ShadedTriangle() {
	v0 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(1)), ColorFromGP0(gpu.GP0Command.Get(0)))
	v1 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(3)), ColorFromGP0(gpu.GP0Command.Get(2)))
	v2 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(5)), ColorFromGP0(gpu.GP0Command.Get(4)))

	gpu.DrawData.PushVertices(v0, v1, v2)
	gpu.rasterTriangle(v0, v1, v2)
}

// GP0(0x38/0x3A): Gouraud-shaded opaque/semi-transparent quad
func (gpu *GPU) gp0ShadedQuad() {
	v0 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(1)), ColorFromGP0(gpu.GP0Command.Get(0)))
	v1 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(3)), ColorFromGP0(gpu.GP0Command.Get(2)))
	v2 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(5)), ColorFromGP0(gpu.GP0Command.Get(4)))
	v3 := NewVertex(Vec2FromGP0(gpu.GP0Command.Get(7)), ColorFromGP0(gpu.GP0Command.Get(6)))

	gpu.DrawData.PushQuad(v0, v1, v2, v3)
	gpu.rasterTriangle(v0, v1, v2)
	gpu.rasterTriangle(v1, v2, v3)
}

// GP0(0x02): Fill Rectangle in VRAM. X is rounded down and width rounded
// up to a multiple of 16, matching the real GPU's fill granularity
func (gpu *GPU) gp0FillRect() {
	clr := ColorFromGP0(gpu.GP0Command.Get(0))
	pos := gpu.GP0Command.Get(1)
	size := gpu.GP0Command.Get(2)

	x := uint16(pos&0x3f0) &^ 0xf
	y := uint16((pos >> 16) & 0x1ff)
	w := (uint16(size&0x3ff) + 0xf) &^ 0xf
	h := uint16((size >> 16) & 0x1ff)

	gpu.VRAM.FillRect(x, y, w, h, bgr555(clr.R, clr.G, clr.B))
}

// GP0(0x80): VRAM to VRAM blit
func (gpu *GPU) gp0CopyRect() {
	src := gpu.GP0Command.Get(1)
	dst := gpu.GP0Command.Get(2)
	size := gpu.GP0Command.Get(3)

	srcX := uint16(src & 0x3ff)
	srcY := uint16((src >> 16) & 0x1ff)
	dstX := uint16(dst & 0x3ff)
	dstY := uint16((dst >> 16) & 0x1ff)

	w := uint16(size & 0x3ff)
	if w == 0 {
		w = VRAM_WIDTH
	}
	h := uint16((size >> 16) & 0x1ff)
	if h == 0 {
		h = VRAM_HEIGHT
	}

	gpu.VRAM.CopyRect(srcX, srcY, dstX, dstY, w, h)
}

// GP0(0xA0): CPU to VRAM transfer. The header is 3 words (opcode,
// destination, width/height); every word after that carries 2 pixels and
// is routed straight into VRAM instead of the fixed-size CommandBuffer,
// since a transfer can be far larger than the 12 word command buffer
func (gpu *GPU) gp0ImageLoad() {
	dst := gpu.GP0Command.Get(1)
	size := gpu.GP0Command.Get(2)

	gpu.imageX = uint16(dst & 0x3ff)
	gpu.imageY = uint16((dst >> 16) & 0x1ff)
	gpu.imageW = uint16(size & 0x3ff)
	if gpu.imageW == 0 {
		gpu.imageW = VRAM_WIDTH
	}
	gpu.imageH = uint16((size >> 16) & 0x1ff)
	if gpu.imageH == 0 {
		gpu.imageH = VRAM_HEIGHT
	}
	gpu.imageCurX = 0
	gpu.imageCurY = 0

	npixels := uint32(gpu.imageW) * uint32(gpu.imageH)
	gpu.imageLoadRemaining = (npixels + 1) / 2
}

// Consumes one 32 bit GP0 word while an image load is in progress
func (gpu *GPU) gp0ImageLoadWord(val uint32) {
	gpu.vramPutPixel(uint16(val))
	gpu.vramPutPixel(uint16(val >> 16))
	gpu.imageLoadRemaining--
}

func (gpu *GPU) vramPutPixel(px uint16) {
	gpu.VRAM.Set(gpu.imageX+gpu.imageCurX, gpu.imageY+gpu.imageCurY, px)
	gpu.imageCurX++
	if gpu.imageCurX >= gpu.imageW {
		gpu.imageCurX = 0
		gpu.imageCurY++
	}
}

// GP0(0xC0): VRAM to CPU transfer. Sets up a read cursor that GPU.Read()
// drains two pixels at a time
func (gpu *GPU) gp0ImageStore() {
	src := gpu.GP0Command.Get(1)
	size := gpu.GP0Command.Get(2)

	gpu.imageX = uint16(src & 0x3ff)
	gpu.imageY = uint16((src >> 16) & 0x1ff)
	gpu.imageW = uint16(size & 0x3ff)
	if gpu.imageW == 0 {
		gpu.imageW = VRAM_WIDTH
	}
	gpu.imageH = uint16((size >> 16) & 0x1ff)
	if gpu.imageH == 0 {
		gpu.imageH = VRAM_HEIGHT
	}
	gpu.imageCurX = 0
	gpu.imageCurY = 0

	npixels := uint32(gpu.imageW) * uint32(gpu.imageH)
	gpu.imageStoreRemaining = (npixels + 1) / 2
}

func (gpu *GPU) vramGetPixel() uint16 {
	px := gpu.VRAM.Get(gpu.imageX+gpu.imageCurX, gpu.imageY+gpu.imageCurY)
	gpu.imageCurX++
	if gpu.imageCurX >= gpu.imageW {
		gpu.imageCurX = 0
		gpu.imageCurY++
	}
	return px
}
