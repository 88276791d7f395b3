// Package jpeg implements the baseline and progressive DCT JPEG decoder
// (spec.md §4.7): marker-segment parsing in LoadHeader up through the
// first SOF, then the remaining DQT/DHT/DRI/SOS/EOI markers and the
// entropy-coded MCU decode in LoadContents. No corpus example implements
// JPEG; the marker dispatch loop follows the teacher's small-function,
// one-marker-one-parser style, and the Huffman/IDCT machinery lives
// alongside in tables.go/idct.go.
package jpeg

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOF0 = 0xC0
	markerSOF2 = 0xC2
	markerDHT  = 0xC4
	markerDQT  = 0xDB
	markerDRI  = 0xDD
	markerSOS  = 0xDA
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }
func subformatErr(msg string) error       { return core.Wrap(core.UnsupportedSubformat, nil, msg) }

// readMarker scans for the next 0xFF <code> pair, tolerating the stray
// 0xFF fill bytes the spec permits between segments.
func readMarker(r *biobuf.Reader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, dataErr(nil, "jpeg: expected marker prefix 0xFF")
	}
	for {
		code, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if code == 0xFF {
			continue
		}
		return code, nil
	}
}

// readSegment reads a length-prefixed marker segment's payload, excluding
// the two length bytes themselves (which the length field counts).
func readSegment(r *biobuf.Reader) ([]byte, error) {
	length, err := r.ReadUint16BE()
	if err != nil {
		return nil, dataErr(err, "jpeg: reading segment length")
	}
	if length < 2 {
		return nil, dataErr(nil, "jpeg: malformed segment length")
	}
	payload, err := r.ReadN(int(length) - 2)
	if err != nil {
		return nil, dataErr(err, "jpeg: reading segment payload")
	}
	return payload, nil
}

// LoadHeader parses marker segments up to and including the first SOF,
// building the component/quant/Huffman state LoadContents continues from.
// internal/sniff has already consumed the SOI marker.
func LoadHeader(r *biobuf.Reader) (*core.Descriptor, error) {
	d := &core.Descriptor{
		Format:         core.JPEG,
		DetailedFormat: "JPEG",
		Reader:         r,
	}
	for {
		marker, err := readMarker(r)
		if err != nil {
			return nil, dataErr(err, "jpeg: reading marker before SOF")
		}
		switch marker {
		case markerSOI:
			continue // stray, tolerated
		case markerSOF0:
			payload, err := readSegment(r)
			if err != nil {
				return nil, err
			}
			if err := parseSOF(payload, false, d); err != nil {
				return nil, err
			}
			return d, nil
		case markerSOF2:
			payload, err := readSegment(r)
			if err != nil {
				return nil, err
			}
			if err := parseSOF(payload, true, d); err != nil {
				return nil, err
			}
			return d, nil
		case 0xC1, 0xC3, 0xC5, 0xC6, 0xC7, 0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF:
			return nil, subformatErr("jpeg: only baseline (SOF0) and progressive (SOF2) are supported")
		case markerDQT:
			payload, err := readSegment(r)
			if err != nil {
				return nil, err
			}
			if err := parseDQT(payload, d); err != nil {
				return nil, err
			}
		case markerDHT:
			payload, err := readSegment(r)
			if err != nil {
				return nil, err
			}
			if err := parseDHT(payload, d); err != nil {
				return nil, err
			}
		case markerDRI:
			payload, err := readSegment(r)
			if err != nil {
				return nil, err
			}
			if err := parseDRI(payload, d); err != nil {
				return nil, err
			}
		case markerEOI:
			return nil, dataErr(nil, "jpeg: EOI before SOF")
		default:
			if _, err := readSegment(r); err != nil {
				return nil, err
			}
		}
	}
}

func parseDQT(payload []byte, d *core.Descriptor) error {
	i := 0
	for i < len(payload) {
		pqtq := payload[i]
		i++
		precision := pqtq >> 4
		id := int(pqtq & 0x0F)
		if id > 3 {
			return dataErr(nil, "jpeg: quant table id out of range")
		}
		table := &[64]uint16{}
		for k := 0; k < 64; k++ {
			if precision == 0 {
				if i >= len(payload) {
					return dataErr(nil, "jpeg: truncated DQT segment")
				}
				table[zigzag[k]] = uint16(payload[i])
				i++
			} else {
				if i+1 >= len(payload) {
					return dataErr(nil, "jpeg: truncated DQT segment")
				}
				table[zigzag[k]] = uint16(payload[i])<<8 | uint16(payload[i+1])
				i += 2
			}
		}
		d.JPEG.QuantTables[id] = table
	}
	return nil
}

func parseDHT(payload []byte, d *core.Descriptor) error {
	i := 0
	for i < len(payload) {
		tcth := payload[i]
		i++
		class := tcth >> 4
		id := int(tcth & 0x0F)
		if id > 3 {
			return dataErr(nil, "jpeg: huffman table id out of range")
		}
		var bits [16]int
		total := 0
		for j := 0; j < 16; j++ {
			if i >= len(payload) {
				return dataErr(nil, "jpeg: truncated DHT segment")
			}
			bits[j] = int(payload[i])
			i++
			total += bits[j]
		}
		if i+total > len(payload) {
			return dataErr(nil, "jpeg: truncated DHT symbol list")
		}
		values := payload[i : i+total]
		i += total
		table := buildHuffTable(bits, values)
		if class == 0 {
			d.JPEG.DCTables[id] = table
		} else {
			d.JPEG.ACTables[id] = table
		}
	}
	return nil
}

func parseDRI(payload []byte, d *core.Descriptor) error {
	if len(payload) < 2 {
		return dataErr(nil, "jpeg: truncated DRI segment")
	}
	d.JPEG.RestartInterv = int(payload[0])<<8 | int(payload[1])
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func parseSOF(payload []byte, progressive bool, d *core.Descriptor) error {
	if len(payload) < 6 {
		return dataErr(nil, "jpeg: truncated SOF segment")
	}
	precision := payload[0]
	if precision != 8 {
		return subformatErr("jpeg: only 8-bit sample precision is supported")
	}
	height := int(payload[1])<<8 | int(payload[2])
	width := int(payload[3])<<8 | int(payload[4])
	nComp := int(payload[5])
	if width == 0 || height == 0 {
		return dataErr(nil, "jpeg: zero dimension")
	}
	if len(payload) < 6+3*nComp {
		return dataErr(nil, "jpeg: truncated SOF component list")
	}

	comps := make([]core.JPEGComponent, 0, nComp)
	maxH, maxV := 1, 1
	i := 6
	for c := 0; c < nComp; c++ {
		id := int(payload[i])
		hv := payload[i+1]
		q := int(payload[i+2])
		i += 3
		h := int(hv >> 4)
		v := int(hv & 0x0F)
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return dataErr(nil, "jpeg: invalid sampling factor")
		}
		if h > maxH {
			maxH = h
		}
		if v > maxV {
			maxV = v
		}
		comps = append(comps, core.JPEGComponent{ID: id, H: h, V: v, QTableID: q})
	}

	switch nComp {
	case 1:
		d.JPEG.ColorSpace = core.ColorSpaceGrey
		d.Greyscale = true
	case 3:
		d.JPEG.ColorSpace = core.ColorSpaceYCbCr
	case 4:
		d.JPEG.ColorSpace = core.ColorSpaceCMYK
	default:
		return subformatErr("jpeg: unsupported component count")
	}

	d.Width = width
	d.Height = height
	d.BitsPerPixel = len(comps) * 8
	d.Progressive = progressive
	d.JPEG.Progressive = progressive
	d.JPEG.Components = comps
	d.JPEG.MaxH = maxH
	d.JPEG.MaxV = maxV

	mcusPerLine := ceilDiv(width, 8*maxH)
	mcusPerColumn := ceilDiv(height, 8*maxV)
	d.JPEG.BlocksPerLine = make([]int, len(comps))
	d.JPEG.BlocksPerColumn = make([]int, len(comps))
	d.JPEG.Coefficients = make([][]int32, len(comps))
	for idx, c := range comps {
		bl := mcusPerLine * c.H
		bc := mcusPerColumn * c.V
		d.JPEG.BlocksPerLine[idx] = bl
		d.JPEG.BlocksPerColumn[idx] = bc
		d.JPEG.Coefficients[idx] = make([]int32, bl*bc*64)
	}
	return nil
}

// LoadContents resumes marker parsing after SOF, decodes every scan's
// entropy-coded MCU data, and on EOI performs dequantization, IDCT,
// chroma upsampling, and color-space conversion into sink. JPEG has no
// animation, so the returned delay is always 0 and a Descriptor already
// marked Done simply reports completion again without re-reading.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return 0, core.Wrap(core.InvalidPrimaryColorRange, nil, "jpeg: invalid primary color width")
	}
	if d.JPEG.Done {
		return 0, nil
	}
	r := d.Reader
	marker, err := readMarker(r)
	if err != nil {
		return 0, dataErr(err, "jpeg: reading marker after SOF")
	}
	for {
		switch marker {
		case markerDQT:
			payload, err := readSegment(r)
			if err != nil {
				return 0, err
			}
			if err := parseDQT(payload, d); err != nil {
				return 0, err
			}
			if marker, err = readMarker(r); err != nil {
				return 0, dataErr(err, "jpeg: reading marker after SOF")
			}
		case markerDHT:
			payload, err := readSegment(r)
			if err != nil {
				return 0, err
			}
			if err := parseDHT(payload, d); err != nil {
				return 0, err
			}
			if marker, err = readMarker(r); err != nil {
				return 0, dataErr(err, "jpeg: reading marker after SOF")
			}
		case markerDRI:
			payload, err := readSegment(r)
			if err != nil {
				return 0, err
			}
			if err := parseDRI(payload, d); err != nil {
				return 0, err
			}
			if marker, err = readMarker(r); err != nil {
				return 0, dataErr(err, "jpeg: reading marker after SOF")
			}
		case markerSOS:
			payload, err := readSegment(r)
			if err != nil {
				return 0, err
			}
			next, ok, err := decodeScan(payload, d, r)
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, dataErr(nil, "jpeg: entropy-coded data not terminated by a marker")
			}
			marker = next
		case markerEOI:
			if err := finish(d, sink, outW); err != nil {
				return 0, err
			}
			d.JPEG.Done = true
			return 0, nil
		default:
			if _, err := readSegment(r); err != nil {
				return 0, err
			}
			if marker, err = readMarker(r); err != nil {
				return 0, dataErr(err, "jpeg: reading marker after SOF")
			}
		}
	}
}

func findComponent(comps []core.JPEGComponent, id int) int {
	for i, c := range comps {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// decodeScan parses one SOS segment's header and entropy-codes its MCUs
// (interleaved) or, for a progressive AC scan, its single component's
// blocks (non-interleaved, spec.md §4.7's "spectral selection" case). It
// returns the marker that immediately follows the entropy-coded data: the
// bit reader's own read-ahead has already consumed it from the shared
// byte reader by the time the last block finishes, so the caller must
// resume dispatch from this value rather than reading a fresh marker.
func decodeScan(payload []byte, d *core.Descriptor, r *biobuf.Reader) (byte, bool, error) {
	if len(payload) < 1 {
		return 0, false, dataErr(nil, "jpeg: truncated SOS segment")
	}
	nComp := int(payload[0])
	if len(payload) < 1+2*nComp+3 {
		return 0, false, dataErr(nil, "jpeg: truncated SOS component list")
	}
	scanComps := make([]int, nComp)
	i := 1
	for c := 0; c < nComp; c++ {
		selector := int(payload[i])
		dcac := payload[i+1]
		i += 2
		idx := findComponent(d.JPEG.Components, selector)
		if idx < 0 {
			return 0, false, dataErr(nil, "jpeg: SOS references unknown component")
		}
		d.JPEG.Components[idx].DCTable = int(dcac >> 4)
		d.JPEG.Components[idx].ACTable = int(dcac & 0x0F)
		scanComps[c] = idx
	}
	ss := int(payload[i])
	se := int(payload[i+1])
	ahal := payload[i+2]
	ah := int(ahal >> 4)
	al := int(ahal & 0x0F)

	for _, idx := range scanComps {
		d.JPEG.Components[idx].DCPred = 0
	}

	br := biobuf.NewMSB(r)
	restartCounter := d.JPEG.RestartInterv
	eobrun := 0

	if !d.JPEG.Progressive {
		mcusPerLine := ceilDiv(d.Width, 8*d.JPEG.MaxH)
		mcusPerColumn := ceilDiv(d.Height, 8*d.JPEG.MaxV)
		total := mcusPerLine * mcusPerColumn
		count := 0
		for my := 0; my < mcusPerColumn; my++ {
			for mx := 0; mx < mcusPerLine; mx++ {
				for _, ci := range scanComps {
					comp := &d.JPEG.Components[ci]
					bl := d.JPEG.BlocksPerLine[ci]
					for v := 0; v < comp.V; v++ {
						for h := 0; h < comp.H; h++ {
							by := my*comp.V + v
							bx := mx*comp.H + h
							off := (by*bl + bx) * 64
							block := d.JPEG.Coefficients[ci][off : off+64]
							if err := decodeBaselineBlock(br, d, ci, block); err != nil {
								return 0, false, err
							}
						}
					}
				}
				count++
				if restartCounter > 0 {
					restartCounter--
					if restartCounter == 0 && count < total {
						if err := handleRestart(br, d); err != nil {
							return 0, false, err
						}
						restartCounter = d.JPEG.RestartInterv
					}
				}
			}
		}
		marker, ok := br.AtMarker()
		return marker, ok, nil
	}

	// Progressive: a DC scan (ss==0) is always interleaved across every
	// scan component; an AC scan (ss>0) names exactly one non-interleaved
	// component, scanned over its own block grid (spec.md §4.7).
	if ss == 0 {
		mcusPerLine := ceilDiv(d.Width, 8*d.JPEG.MaxH)
		mcusPerColumn := ceilDiv(d.Height, 8*d.JPEG.MaxV)
		total := mcusPerLine * mcusPerColumn
		count := 0
		for my := 0; my < mcusPerColumn; my++ {
			for mx := 0; mx < mcusPerLine; mx++ {
				for _, ci := range scanComps {
					comp := &d.JPEG.Components[ci]
					bl := d.JPEG.BlocksPerLine[ci]
					for v := 0; v < comp.V; v++ {
						for h := 0; h < comp.H; h++ {
							by := my*comp.V + v
							bx := mx*comp.H + h
							off := (by*bl + bx) * 64
							block := d.JPEG.Coefficients[ci][off : off+64]
							if ah == 0 {
								decodeDCFirst(br, d, ci, block, al)
							} else {
								decodeDCRefine(br, block, al)
							}
						}
					}
				}
				count++
				if restartCounter > 0 {
					restartCounter--
					if restartCounter == 0 && count < total {
						if err := handleRestart(br, d); err != nil {
							return 0, false, err
						}
						restartCounter = d.JPEG.RestartInterv
						eobrun = 0
					}
				}
			}
		}
		marker, ok := br.AtMarker()
		return marker, ok, nil
	}

	idx := scanComps[0]
	bl := d.JPEG.BlocksPerLine[idx]
	bc := d.JPEG.BlocksPerColumn[idx]
	comp := &d.JPEG.Components[idx]
	acTable := d.JPEG.ACTables[comp.ACTable]
	total := bl * bc
	count := 0
	for by := 0; by < bc; by++ {
		for bx := 0; bx < bl; bx++ {
			off := (by*bl + bx) * 64
			block := d.JPEG.Coefficients[idx][off : off+64]
			var err error
			if ah == 0 {
				err = decodeACFirst(br, acTable, block, ss, se, al, &eobrun)
			} else {
				err = decodeACRefine(br, acTable, block, ss, se, al, &eobrun)
			}
			if err != nil {
				return 0, false, err
			}
			count++
			if restartCounter > 0 {
				restartCounter--
				if restartCounter == 0 && count < total {
					if err := handleRestart(br, d); err != nil {
						return 0, false, err
					}
					restartCounter = d.JPEG.RestartInterv
					eobrun = 0
				}
			}
		}
	}
	marker, ok := br.AtMarker()
	return marker, ok, nil
}

// handleRestart consumes the RSTn marker the bit reader has already
// stopped at (its two bytes were read while filling the accumulator) and
// resets every component's DC predictor, per spec.md §4.7.
func handleRestart(br *biobuf.MSBReader, d *core.Descriptor) error {
	mbyte, atMarker := br.AtMarker()
	if !atMarker || mbyte < markerRST0 || mbyte > markerRST7 {
		return dataErr(nil, "jpeg: expected restart marker")
	}
	br.Realign()
	for i := range d.JPEG.Components {
		d.JPEG.Components[i].DCPred = 0
	}
	return nil
}

func decodeBaselineBlock(br *biobuf.MSBReader, d *core.Descriptor, ci int, block []int32) error {
	comp := &d.JPEG.Components[ci]
	dcTable := d.JPEG.DCTables[comp.DCTable]
	acTable := d.JPEG.ACTables[comp.ACTable]
	if dcTable == nil || acTable == nil {
		return dataErr(nil, "jpeg: scan references undefined huffman table")
	}
	s, ok := huffDecode(br, dcTable)
	if !ok {
		return dataErr(nil, "jpeg: invalid DC huffman code")
	}
	diff := receiveExtend(br, int(s))
	comp.DCPred += int(diff)
	block[0] = int32(comp.DCPred)

	k := 1
	for k < 64 {
		rs, ok := huffDecode(br, acTable)
		if !ok {
			return dataErr(nil, "jpeg: invalid AC huffman code")
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)
		if size == 0 {
			if run == 15 {
				k += 16
				continue
			}
			break // EOB
		}
		k += run
		if k >= 64 {
			break
		}
		block[zigzag[k]] = receiveExtend(br, size)
		k++
	}
	return nil
}

func decodeDCFirst(br *biobuf.MSBReader, d *core.Descriptor, ci int, block []int32, al int) {
	comp := &d.JPEG.Components[ci]
	dcTable := d.JPEG.DCTables[comp.DCTable]
	s, ok := huffDecode(br, dcTable)
	if !ok {
		return
	}
	diff := receiveExtend(br, int(s))
	comp.DCPred += int(diff)
	block[0] = int32(comp.DCPred) << uint(al)
}

func decodeDCRefine(br *biobuf.MSBReader, block []int32, al int) {
	if br.ReadBits(1) == 1 {
		block[0] |= int32(1) << uint(al)
	}
}

// decodeACFirst is the progressive AC scan's first pass: decode runs of
// zero coefficients and newly-seen nonzero magnitudes, or an EOBRUN that
// zeroes out the remainder of this and the following blocks.
func decodeACFirst(br *biobuf.MSBReader, acTable *core.HuffTable, block []int32, ss, se, al int, eobrun *int) error {
	if *eobrun > 0 {
		*eobrun--
		return nil
	}
	k := ss
	for k <= se {
		rs, ok := huffDecode(br, acTable)
		if !ok {
			return dataErr(nil, "jpeg: invalid AC huffman code")
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)
		if size == 0 {
			if run < 15 {
				*eobrun = (1 << uint(run)) - 1
				if run > 0 {
					*eobrun += int(br.ReadBits(run))
				}
				break
			}
			k += 16
			continue
		}
		k += run
		if k > se {
			break
		}
		block[zigzag[k]] = receiveExtend(br, size) << uint(al)
		k++
	}
	return nil
}

// decodeACRefine is the progressive AC scan's refinement pass (spec.md
// §4.7): previously-nonzero coefficients receive a correction bit, while
// the run count in each Huffman code skips that many still-zero
// coefficients before placing (or not) one newly-nonzero coefficient.
func decodeACRefine(br *biobuf.MSBReader, acTable *core.HuffTable, block []int32, ss, se, al int, eobrun *int) error {
	p1 := int32(1) << uint(al)
	m1 := int32(-1) << uint(al)
	k := ss

	if *eobrun == 0 {
	outer:
		for k <= se {
			rs, ok := huffDecode(br, acTable)
			if !ok {
				return dataErr(nil, "jpeg: invalid AC huffman code")
			}
			run := int(rs >> 4)
			size := int(rs & 0x0F)
			var val int32
			if size == 0 {
				if run < 15 {
					*eobrun = 1 << uint(run)
					if run > 0 {
						*eobrun += int(br.ReadBits(run))
					}
					break outer
				}
				// run == 15: ZRL, skip 16 zero-history coefficients below
			} else {
				if br.ReadBits(1) == 1 {
					val = p1
				} else {
					val = m1
				}
			}
			for k <= se {
				pos := zigzag[k]
				if block[pos] != 0 {
					if br.ReadBits(1) == 1 && block[pos]&p1 == 0 {
						if block[pos] >= 0 {
							block[pos] += p1
						} else {
							block[pos] += m1
						}
					}
				} else {
					if run == 0 {
						if val != 0 {
							block[pos] = val
						}
						k++
						continue outer
					}
					run--
				}
				k++
			}
		}
	}

	if *eobrun > 0 {
		for ; k <= se; k++ {
			pos := zigzag[k]
			if block[pos] != 0 {
				if br.ReadBits(1) == 1 && block[pos]&p1 == 0 {
					if block[pos] >= 0 {
						block[pos] += p1
					} else {
						block[pos] += m1
					}
				}
			}
		}
		*eobrun--
	}
	return nil
}

// finish dequantizes every block, runs the inverse DCT, upsamples chroma
// planes to full resolution by nearest-neighbor replication, converts to
// RGB, and emits every pixel through sink. Called once, from EOI.
func finish[P core.Primary](d *core.Descriptor, sink core.Sink[P], outW int) error {
	nComp := len(d.JPEG.Components)
	planes := make([][]uint8, nComp)
	for ci, comp := range d.JPEG.Components {
		bl := d.JPEG.BlocksPerLine[ci]
		bc := d.JPEG.BlocksPerColumn[ci]
		quant := d.JPEG.QuantTables[comp.QTableID]
		if quant == nil {
			return dataErr(nil, "jpeg: scan references undefined quant table")
		}
		planeW := bl * 8
		planeH := bc * 8
		plane := make([]uint8, planeW*planeH)
		var block [64]int32
		for by := 0; by < bc; by++ {
			for bx := 0; bx < bl; bx++ {
				off := (by*bl + bx) * 64
				coeffs := d.JPEG.Coefficients[ci][off : off+64]
				for p := 0; p < 64; p++ {
					block[p] = coeffs[p] * int32(quant[p])
				}
				px := idct8x8(&block)
				for y := 0; y < 8; y++ {
					row := (by*8+y)*planeW + bx*8
					copy(plane[row:row+8], px[y*8:y*8+8])
				}
			}
		}
		planes[ci] = plane
	}

	sample := func(ci, x, y int) uint8 {
		comp := d.JPEG.Components[ci]
		bl := d.JPEG.BlocksPerLine[ci]
		planeW := bl * 8
		sx := x * comp.H / d.JPEG.MaxH
		sy := y * comp.V / d.JPEG.MaxV
		return planes[ci][sy*planeW+sx]
	}

	for y := 0; y < d.Height; y++ {
		sink.SetXY(0, y)
		for x := 0; x < d.Width; x++ {
			var r, g, b uint8
			switch d.JPEG.ColorSpace {
			case core.ColorSpaceGrey:
				r = sample(0, x, y)
				g, b = r, r
			case core.ColorSpaceYCbCr:
				yy := sample(0, x, y)
				cb := sample(1, x, y)
				cr := sample(2, x, y)
				r, g, b = colorconv.YCbCrToRGB(yy, cb, cr)
			case core.ColorSpaceCMYK:
				c := sample(0, x, y)
				m := sample(1, x, y)
				yv := sample(2, x, y)
				k := sample(3, x, y)
				r, g, b = colorconv.CMYKToRGB(c, m, yv, k)
			}
			rr := P(colorconv.Promote(uint32(r), 8, outW))
			gg := P(colorconv.Promote(uint32(g), 8, outW))
			bb := P(colorconv.Promote(uint32(b), 8, outW))
			full := P(colorconv.Promote(0xFF, 8, outW))
			sink.PutPixel(rr, gg, bb, full)
		}
	}
	return nil
}
