package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
)

func TestParseBorderInput(t *testing.T) {
	tests := []struct {
		name string
		in   service.BorderInput
		want domain.BorderConfig
	}{
		{
			name: "valid",
			in:   service.BorderInput{Width: "2", Style: "dotted", Color: "#336699", Top: "5", Right: "6", Bottom: "7", Left: "8"},
			want: domain.BorderConfig{Enabled: true, Width: 2, Style: domain.BorderDotted, Color: "#336699",
				Padding: domain.Padding{Top: 5, Right: 6, Bottom: 7, Left: 8}},
		},
		{
			name: "invalid numbers become zero",
			in:   service.BorderInput{Width: "abc", Style: "wavy", Top: "-3", Right: "", Bottom: "px1", Left: " 4 "},
			want: domain.BorderConfig{Enabled: true, Width: 0, Style: domain.BorderSolid, Color: "#000000",
				Padding: domain.Padding{Left: 4}},
		},
		{
			name: "leading integer is kept",
			in:   service.BorderInput{Width: "12px", Style: "dashed", Top: "12.5", Right: "+3", Bottom: "7 px", Left: "-0"},
			want: domain.BorderConfig{Enabled: true, Width: 12, Style: domain.BorderDashed, Color: "#000000",
				Padding: domain.Padding{Top: 12, Right: 3, Bottom: 7}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseBorderInput(tt.in))
		})
	}
}

func TestBorderRect_Geometry(t *testing.T) {
	cfg := domain.BorderConfig{Enabled: true, Width: 4, Style: domain.BorderDashed, Color: "#123456",
		Padding: domain.Padding{Top: 10, Right: 20, Bottom: 30, Left: 40}}

	r := service.BorderRect(cfg, 794, 1123)
	assert.Equal(t, domain.NamePageBorder, r.Name)
	assert.Equal(t, 42.0, r.Left)
	assert.Equal(t, 12.0, r.Top)
	assert.Equal(t, 794.0-40-20-4, r.Width)
	assert.Equal(t, 1123.0-10-30-4, r.Height)
	assert.Equal(t, "transparent", r.Fill)
	assert.Equal(t, "#123456", r.Stroke)
	assert.Equal(t, 4.0, r.StrokeWidth)
	assert.Equal(t, []float64{10, 5}, r.StrokeDashArray)
	assert.False(t, r.Selectable)
	assert.False(t, r.Evented)
}

func TestBorderService_ApplyAndRemove(t *testing.T) {
	ctx := context.Background()
	c := newCanvas()
	em := &service.MockEmitter{}
	svc := service.NewBorderService(c, em)

	shape := domain.NewObject(domain.ObjectRect)
	c.Add(shape)

	cfg := domain.DefaultBorder()
	cfg.Width = 2
	svc.Apply(ctx, cfg)
	svc.Apply(ctx, cfg)

	objs := c.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, domain.NamePageBorder, objs[0].Name, "border is drawn behind content")
	assert.True(t, svc.Config().Enabled)
	assert.Equal(t, "Page border applied", lastNotification(t, em).Message)

	svc.Disable(ctx)
	assert.Zero(t, countByName(c.Objects(), domain.NamePageBorder))
	assert.False(t, svc.Config().Enabled)
	assert.Equal(t, "Page border removed", lastNotification(t, em).Message)
}

func TestBorderService_RenderDisabledDrawsNothing(t *testing.T) {
	c := newCanvas()
	svc := service.NewBorderService(c, nil)
	svc.Render()
	assert.Empty(t, c.Objects())
}

func TestBorder_PerPage(t *testing.T) {
	ctx := context.Background()
	f := newEditor(t)

	f.editor.ApplyPageBorder(ctx, service.BorderInput{Width: "5", Style: "double", Color: "#00ff00"})
	f.editor.AddNewPage(ctx)
	assert.Zero(t, countByName(f.canvas.Objects(), domain.NamePageBorder))

	f.editor.NavigatePage(ctx, -1)
	assert.Equal(t, 1, countByName(f.canvas.Objects(), domain.NamePageBorder))
	assert.Equal(t, domain.BorderDouble, f.editor.Border().Style)

	f.editor.RemovePageBorder(ctx)
	assert.Zero(t, countByName(f.canvas.Objects(), domain.NamePageBorder))
	assert.False(t, f.editor.Project().Pages[0].Border.Enabled)
}
