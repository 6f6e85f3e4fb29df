package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd"
	"golang.org/x/exp/slog"
)

const queueFamilyIgnored = -1

func (b *Backend) transferPool() (core1_0.CommandPool, error) {
	if b.commandPool != nil {
		return b.commandPool, nil
	}

	pool, _, err := b.device.CreateCommandPool(b.allocationCallbacks, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateTransient,
		QueueFamilyIndex: b.queueFamilyIndex,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating transfer command pool for queue family %d", b.queueFamilyIndex)
	}

	b.commandPool = pool
	return pool, nil
}

// SubmitTransfer records a one-time command buffer with record, submits it to the backend's queue
// and waits for it to complete
func (b *Backend) SubmitTransfer(record func(recorder vbd.CommandRecorder) error) error {
	if b.queue == nil {
		return errors.New("the vulkan backend was created without a transfer queue")
	}

	b.logger.Debug("Backend::SubmitTransfer", slog.Int("QueueFamilyIndex", b.queueFamilyIndex))

	pool, err := b.transferPool()
	if err != nil {
		return err
	}

	commandBuffers, _, err := b.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return errors.Wrap(err, "allocating transfer command buffer")
	}
	defer b.device.FreeCommandBuffers(commandBuffers)

	commandBuffer := commandBuffers[0]
	_, err = commandBuffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return errors.Wrap(err, "beginning transfer command buffer")
	}

	err = record(&commandRecorder{commandBuffer: commandBuffer})
	if err != nil {
		return err
	}

	_, err = commandBuffer.End()
	if err != nil {
		return errors.Wrap(err, "ending transfer command buffer")
	}

	fence, _, err := b.device.CreateFence(b.allocationCallbacks, core1_0.FenceCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "creating transfer fence")
	}
	defer fence.Destroy(b.allocationCallbacks)

	_, err = b.queue.Submit(fence, []core1_0.SubmitInfo{
		{CommandBuffers: commandBuffers},
	})
	if err != nil {
		return errors.Wrap(err, "submitting transfer")
	}

	res, err := b.device.WaitForFences(true, b.fenceTimeout, []core1_0.Fence{fence})
	if err != nil {
		return b.drainQueue(errors.Wrap(err, "waiting for transfer"))
	}
	if res == core1_0.VKTimeout {
		return b.drainQueue(errors.Newf("transfer did not complete within %s", b.fenceTimeout))
	}

	return nil
}

// drainQueue blocks until the queue is idle so the command buffer, the fence and the caller's
// staging memory are no longer in use when they are released
func (b *Backend) drainQueue(cause error) error {
	b.logger.Debug("    Backend::SubmitTransfer WAIT IDLE", slog.Any("error", cause))

	_, err := b.queue.WaitIdle()
	if err != nil {
		return errors.CombineErrors(cause, errors.Wrap(err, "waiting for transfer queue to idle"))
	}
	return cause
}

type commandRecorder struct {
	commandBuffer core1_0.CommandBuffer
}

func (r *commandRecorder) CmdCopyBuffer(src core1_0.Buffer, dst core1_0.Buffer, regions []core1_0.BufferCopy) error {
	return r.commandBuffer.CmdCopyBuffer(src, dst, regions)
}

func (r *commandRecorder) CmdCopyBufferToImage(src core1_0.Buffer, dst core1_0.Image, region vbd.ImageCopy) error {
	err := r.commandBuffer.CmdPipelineBarrier(core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageTransfer, 0,
		nil, nil, []core1_0.ImageMemoryBarrier{
			layoutBarrier(dst, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal, 0, core1_0.AccessTransferWrite),
		})
	if err != nil {
		return err
	}

	err = r.commandBuffer.CmdCopyBufferToImage(src, dst, core1_0.ImageLayoutTransferDstOptimal, []core1_0.BufferImageCopy{
		bufferImageCopy(region),
	})
	if err != nil {
		return err
	}

	return r.commandBuffer.CmdPipelineBarrier(core1_0.PipelineStageTransfer, core1_0.PipelineStageFragmentShader, 0,
		nil, nil, []core1_0.ImageMemoryBarrier{
			layoutBarrier(dst, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.AccessTransferWrite, core1_0.AccessShaderRead),
		})
}

func layoutBarrier(image core1_0.Image, oldLayout, newLayout core1_0.ImageLayout, srcAccess, dstAccess core1_0.AccessFlags) core1_0.ImageMemoryBarrier {
	return core1_0.ImageMemoryBarrier{
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: queueFamilyIgnored,
		DstQueueFamilyIndex: queueFamilyIgnored,
		Image:               image,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// bufferImageCopy copies a tightly packed image starting at the region's buffer offset into mip 0
func bufferImageCopy(region vbd.ImageCopy) core1_0.BufferImageCopy {
	return core1_0.BufferImageCopy{
		BufferOffset: region.BufferOffset,
		ImageSubresource: core1_0.ImageSubresourceLayers{
			AspectMask:     core1_0.ImageAspectColor,
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: core1_0.Extent3D{Width: region.Width, Height: region.Height, Depth: 1},
	}
}
