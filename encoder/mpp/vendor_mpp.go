//go:build mpp
// +build mpp

/*
DESCRIPTION
  vendor_mpp.go is the cgo bridge to the real Rockchip MPP VPU, built only
  when mjpegd is compiled with the "mpp" tag on a device with the vendor SDK
  (librockchip_mpp, headers under rockchip/) installed. It implements the
  session/bufferGroup/buffer interfaces of vendor.go by calling the MPP C
  API in the order §4.4 specifies: mpp_create, mpp_init(MPP_VIDEO_CodingMJPEG),
  mpi->control(MPP_ENC_SET_CFG) for the prep fields and fixed-quantiser
  jpeg:quant, mpp_buffer_group_get_internal for DMA allocation, and the
  encode submit/retrieve/release sequence.

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpp

/*
#cgo LDFLAGS: -lrockchip_mpp
#include <stdlib.h>
#include <string.h>
#include <rockchip/rk_mpi.h>
#include <rockchip/mpp_buffer.h>
#include <rockchip/mpp_frame.h>
#include <rockchip/mpp_packet.h>

static MppCodingType mjpeg_coding_type(void) { return MPP_VIDEO_CodingMJPEG; }
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

// errVendor wraps any non-zero MPP_RET into a Go error carrying the call
// that failed, for adapter.go to fold into the appropriate encoder.Err*.
var errVendor = errors.New("mpp: vendor call failed")

type vendorSession struct {
	ctx C.MppCtx
	api *C.MppApi
}

var (
	_ session     = (*vendorSession)(nil)
	_ bufferGroup = (*vendorGroup)(nil)
	_ buffer      = (*vendorBuffer)(nil)
)

func newVendorSession() (session, error) {
	s := &vendorSession{}
	if ret := C.mpp_create(&s.ctx, &s.api); ret != 0 {
		return nil, fmt.Errorf("%w: mpp_create: %d", errVendor, int(ret))
	}
	if ret := C.mpp_init(s.ctx, C.MPP_CTX_ENC, C.mjpeg_coding_type()); ret != 0 {
		C.mpp_destroy(s.ctx)
		return nil, fmt.Errorf("%w: mpp_init: %d", errVendor, int(ret))
	}
	return s, nil
}

func (s *vendorSession) Configure(cfg encodeConfig) error {
	var enccfg C.MppEncCfg
	if ret := C.mpp_enc_cfg_init(&enccfg); ret != 0 {
		return fmt.Errorf("%w: mpp_enc_cfg_init: %d", errVendor, int(ret))
	}
	defer C.mpp_enc_cfg_deinit(enccfg)

	C.mpp_enc_cfg_set_s32(enccfg, C.CString("prep:width"), C.RK_S32(cfg.Width))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("prep:height"), C.RK_S32(cfg.Height))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("prep:hor_stride"), C.RK_S32(cfg.HorStride))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("prep:ver_stride"), C.RK_S32(cfg.VerStride))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("prep:format"), C.RK_S32(cfg.Format))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("rc:mode"), C.RK_S32(C.MPP_ENC_RC_MODE_FIXQP))
	C.mpp_enc_cfg_set_s32(enccfg, C.CString("jpeg:quant"), C.RK_S32(cfg.Quality))

	if ret := s.api.control(s.ctx, C.MPP_ENC_SET_CFG, unsafe.Pointer(enccfg)); ret != 0 {
		return fmt.Errorf("%w: control(MPP_ENC_SET_CFG): %d", errVendor, int(ret))
	}
	return nil
}

func (s *vendorSession) NewBufferGroup() (bufferGroup, error) {
	g := &vendorGroup{}
	if ret := C.mpp_buffer_group_get_internal(&g.grp, C.MPP_BUFFER_TYPE_DRM); ret != 0 {
		return nil, fmt.Errorf("%w: mpp_buffer_group_get_internal: %d", errVendor, int(ret))
	}
	return g, nil
}

func (s *vendorSession) Encode(frame, packet buffer, cfg encodeConfig) (int, error) {
	fb := frame.(*vendorBuffer)
	pb := packet.(*vendorBuffer)

	var mppFrame C.MppFrame
	if ret := C.mpp_frame_init(&mppFrame); ret != 0 {
		return 0, fmt.Errorf("%w: mpp_frame_init: %d", errVendor, int(ret))
	}
	C.mpp_frame_set_width(mppFrame, C.RK_U32(cfg.Width))
	C.mpp_frame_set_height(mppFrame, C.RK_U32(cfg.Height))
	C.mpp_frame_set_hor_stride(mppFrame, C.RK_S32(cfg.HorStride))
	C.mpp_frame_set_ver_stride(mppFrame, C.RK_S32(cfg.VerStride))
	C.mpp_frame_set_fmt(mppFrame, C.MppFrameFormat(cfg.Format))
	C.mpp_frame_set_buffer(mppFrame, fb.buf)
	defer C.mpp_frame_deinit(&mppFrame)

	if ret := s.api.encode_put_frame(s.ctx, mppFrame); ret != 0 {
		return 0, fmt.Errorf("%w: encode_put_frame: %d", errVendor, int(ret))
	}

	var mppPacket C.MppPacket
	if ret := s.api.encode_get_packet(s.ctx, &mppPacket); ret != 0 {
		return 0, fmt.Errorf("%w: encode_get_packet: %d", errVendor, int(ret))
	}
	defer C.mpp_packet_deinit(&mppPacket)

	n := int(C.mpp_packet_get_length(mppPacket))
	if n == 0 {
		return 0, nil
	}
	src := C.mpp_packet_get_pos(mppPacket)
	dst := pb.Bytes()
	if n > len(dst) {
		n = len(dst)
	}
	C.memcpy(unsafe.Pointer(&dst[0]), src, C.size_t(n))
	return n, nil
}

func (s *vendorSession) Close() error {
	C.mpp_destroy(s.ctx)
	return nil
}

type vendorGroup struct {
	grp C.MppBufferGroup
}

func (g *vendorGroup) Alloc(size int) (buffer, error) {
	var b C.MppBuffer
	if ret := C.mpp_buffer_get(g.grp, &b, C.size_t(size)); ret != 0 {
		return nil, fmt.Errorf("%w: mpp_buffer_get: %d", errVendor, int(ret))
	}
	ptr := C.mpp_buffer_get_ptr(b)
	return &vendorBuffer{
		buf: b,
		mem: unsafe.Slice((*byte)(ptr), size),
	}, nil
}

func (g *vendorGroup) Close() error {
	C.mpp_buffer_group_put(g.grp)
	return nil
}

type vendorBuffer struct {
	buf C.MppBuffer
	mem []byte
}

func (b *vendorBuffer) Bytes() []byte { return b.mem }

// Sync flushes dirty CPU cache lines for the buffer's writable range, per
// §4.4 step 4 and §5's "Failure of cache-sync" — the one part of this
// contract that is non-negotiable: skipping it produces intermittent
// green/cyan artefacts in the encoded output.
func (b *vendorBuffer) Sync() error {
	if ret := C.mpp_buffer_sync_end(b.buf); ret != 0 {
		return fmt.Errorf("%w: mpp_buffer_sync_end: %d", errVendor, int(ret))
	}
	return nil
}

func (b *vendorBuffer) Close() error {
	C.mpp_buffer_put(b.buf)
	return nil
}
