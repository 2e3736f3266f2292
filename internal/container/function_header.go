package container

func addressOrNil(addr uint32) *uint32 {
	if addr != 0 {
		return &addr
	}
	return nil
}

// readFunctionHeaderLegacy decodes a V1/V2 function header. The args
// address is always the header's own end (args, if any, immediately
// follow the fixed fields), unlike V3 where it's an explicit pointer.
func readFunctionHeaderLegacy(r *leReader) (rawFunctionHeader, error) {
	nameAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	codeAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	parentAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	functionType, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	arity, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	paramCount, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	unknown, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	if _, err := r.u16(); err != nil { // function id, unused on decode
		return rawFunctionHeader{}, err
	}
	frameSize, err := r.u16()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	argsAddr := uint32(r.pos)
	return rawFunctionHeader{
		nameAddress:   addressOrNil(nameAddr),
		codeAddress:   codeAddr,
		parentAddress: addressOrNil(parentAddr),
		argsAddress:   &argsAddr,
		frameSize:     frameSize,
		functionType:  functionType,
		arity:         arity,
		paramCount:    paramCount,
		unknown:       unknown,
	}, nil
}

// readFunctionHeaderModern decodes a V3 function header.
func readFunctionHeaderModern(r *leReader) (rawFunctionHeader, error) {
	if _, err := r.u32(); err != nil { // header's own address, unused on decode
		return rawFunctionHeader{}, err
	}
	codeAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	functionType, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	arity, err := r.u8()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	frameSize, err := r.u16()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	if _, err := r.u32(); err != nil { // function id, unused on decode
		return rawFunctionHeader{}, err
	}
	nameAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	argsAddr, err := r.u32()
	if err != nil {
		return rawFunctionHeader{}, err
	}
	paramCount := arity
	if functionType == 0 {
		paramCount = 0
	}
	return rawFunctionHeader{
		nameAddress:  addressOrNil(nameAddr),
		codeAddress:  codeAddr,
		argsAddress:  addressOrNil(argsAddr),
		frameSize:    frameSize,
		functionType: functionType,
		arity:        arity,
		paramCount:   paramCount,
	}, nil
}
