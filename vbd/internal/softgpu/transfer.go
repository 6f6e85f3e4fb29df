package softgpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd"
)

type command func() error

// commandBuffer records copies and executes them when the transfer is submitted
type commandBuffer struct {
	commands []command
}

var _ vbd.CommandRecorder = &commandBuffer{}

func (c *commandBuffer) CmdCopyBuffer(src core1_0.Buffer, dst core1_0.Buffer, regions []core1_0.BufferCopy) error {
	srcBuffer, srcOk := src.(*Buffer)
	dstBuffer, dstOk := dst.(*Buffer)
	if !srcOk || !dstOk {
		return errors.New("copy between buffers that were not created by this device")
	}
	if srcBuffer.usage&core1_0.BufferUsageTransferSrc == 0 {
		return errors.Newf("buffer %d was not created with transfer src usage", srcBuffer.id)
	}
	if dstBuffer.usage&core1_0.BufferUsageTransferDst == 0 {
		return errors.Newf("buffer %d was not created with transfer dst usage", dstBuffer.id)
	}

	for _, region := range regions {
		if region.SrcOffset < 0 || region.SrcOffset+region.Size > srcBuffer.size {
			return errors.Newf("source region %d-%d exceeds buffer %d", region.SrcOffset, region.SrcOffset+region.Size, srcBuffer.id)
		}
		if region.DstOffset < 0 || region.DstOffset+region.Size > dstBuffer.size {
			return errors.Newf("destination region %d-%d exceeds buffer %d", region.DstOffset, region.DstOffset+region.Size, dstBuffer.id)
		}
	}

	copied := make([]core1_0.BufferCopy, len(regions))
	copy(copied, regions)
	c.commands = append(c.commands, func() error {
		if srcBuffer.memory == nil || dstBuffer.memory == nil {
			return errors.New("copy between unbound buffers")
		}

		for _, region := range copied {
			srcStart := srcBuffer.offset + region.SrcOffset
			dstStart := dstBuffer.offset + region.DstOffset
			copy(dstBuffer.memory.data[dstStart:dstStart+region.Size], srcBuffer.memory.data[srcStart:srcStart+region.Size])
		}
		return nil
	})

	return nil
}

func (c *commandBuffer) CmdCopyBufferToImage(src core1_0.Buffer, dst core1_0.Image, region vbd.ImageCopy) error {
	srcBuffer, srcOk := src.(*Buffer)
	dstImage, dstOk := dst.(*Image)
	if !srcOk || !dstOk {
		return errors.New("copy between objects that were not created by this device")
	}
	if dstImage.usage&core1_0.ImageUsageTransferDst == 0 {
		return errors.Newf("image %d was not created with transfer dst usage", dstImage.id)
	}
	if region.Width != dstImage.width || region.Height != dstImage.height {
		return errors.Newf("copy extent %dx%d does not match image %d extent %dx%d", region.Width, region.Height, dstImage.id, dstImage.width, dstImage.height)
	}

	size := region.Size
	if size > dstImage.size {
		size = dstImage.size
	}
	if region.BufferOffset < 0 || region.BufferOffset+size > srcBuffer.size {
		return errors.Newf("source region %d-%d exceeds buffer %d", region.BufferOffset, region.BufferOffset+size, srcBuffer.id)
	}

	c.commands = append(c.commands, func() error {
		if srcBuffer.memory == nil || dstImage.memory == nil {
			return errors.New("copy between unbound objects")
		}

		srcStart := srcBuffer.offset + region.BufferOffset
		copy(dstImage.memory.data[dstImage.offset:dstImage.offset+size], srcBuffer.memory.data[srcStart:srcStart+size])
		return nil
	})

	return nil
}

// SubmitTransfer records commands with record and executes them immediately
func (d *Device) SubmitTransfer(record func(recorder vbd.CommandRecorder) error) error {
	commands := &commandBuffer{}
	err := record(commands)
	if err != nil {
		return err
	}

	_, err = d.checkFailure(OpSubmit)
	if err != nil {
		return err
	}

	d.submits++
	for _, cmd := range commands.commands {
		err = cmd()
		if err != nil {
			return err
		}
	}

	return nil
}
