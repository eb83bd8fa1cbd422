package graphics

import (
	"errors"
	"testing"
)

func TestMemoryCreateDestroy(t *testing.T) {
	m := NewMemory(0)
	pix := make([]byte, 2*3*4)
	pix[0] = 7

	m.Enter()
	tex, err := m.CreateTexture(2, 3, FormatBGRA, pix)
	m.Leave()
	if err != nil {
		t.Fatalf("创建纹理失败: %v", err)
	}
	pix[0] = 0

	got, ok := m.Lookup(tex.ID())
	if !ok {
		t.Fatalf("找不到纹理 %d", tex.ID())
	}
	if got.Width() != 2 || got.Height() != 3 || got.Pix()[0] != 7 {
		t.Fatalf("纹理内容应为上传时的副本")
	}

	m.Enter()
	m.DestroyTexture(tex)
	m.DestroyTexture(tex)
	m.Leave()

	live, created, destroyed := m.Stats()
	if live != 0 || created != 1 || destroyed != 1 {
		t.Fatalf("计数错误: live=%d created=%d destroyed=%d", live, created, destroyed)
	}
}

func TestMemoryRequiresEnter(t *testing.T) {
	m := NewMemory(0)
	if _, err := m.CreateTexture(1, 1, FormatBGRA, make([]byte, 4)); err == nil {
		t.Fatalf("未持有图形上下文时应失败")
	}

	m.Enter()
	tex, err := m.CreateTexture(1, 1, FormatBGRA, make([]byte, 4))
	m.Leave()
	if err != nil {
		t.Fatalf("创建纹理失败: %v", err)
	}
	m.DestroyTexture(tex)
	if live, _, destroyed := m.Stats(); live != 1 || destroyed != 0 {
		t.Fatalf("未持有图形上下文时销毁应被忽略: live=%d destroyed=%d", live, destroyed)
	}
	m.Enter()
	m.DestroyTexture(tex)
	m.Leave()
	if live, _, destroyed := m.Stats(); live != 0 || destroyed != 1 {
		t.Fatalf("持有上下文时应能销毁: live=%d destroyed=%d", live, destroyed)
	}
}

func TestMemoryLimits(t *testing.T) {
	m := NewMemory(8)
	m.Enter()
	defer m.Leave()

	if _, err := m.CreateTexture(9, 1, FormatBGRA, make([]byte, 9*4)); !errors.Is(err, ErrTextureTooLarge) {
		t.Fatalf("期望 ErrTextureTooLarge, got %v", err)
	}
	if _, err := m.CreateTexture(2, 2, FormatBGRA, make([]byte, 3)); err == nil {
		t.Fatalf("像素缓冲不足时应失败")
	}
	if _, err := m.CreateTexture(0, 2, FormatBGRA, nil); err == nil {
		t.Fatalf("0 尺寸纹理应失败")
	}

	m.Fail = errors.New("out of memory")
	if _, err := m.CreateTexture(1, 1, FormatBGRA, make([]byte, 4)); err == nil {
		t.Fatalf("设置 Fail 后应失败")
	}
}
