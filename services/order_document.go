package services

import (
	"context"
	"fmt"

	"oficina-backend/models"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// OrderDocument renders printable work order sheets.
type OrderDocument struct {
	orders    *WorkOrderService
	workshops *WorkshopService
}

func NewOrderDocument(orders *WorkOrderService, workshops *WorkshopService) *OrderDocument {
	return &OrderDocument{orders: orders, workshops: workshops}
}

// Render returns the PDF bytes of one work order.
func (d *OrderDocument) Render(ctx context.Context, tenantID, orderID uuid.UUID) ([]byte, error) {
	detail, err := d.orders.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	workshop, err := d.workshops.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return RenderOrderSheet(*workshop, detail)
}

func RenderOrderSheet(workshop models.Workshop, detail *OrderDetail) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	order := detail.Order
	m.AddRow(20,
		text.NewCol(8, workshop.Name, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, "Ordem de Serviço", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(16,
		col.New(8).Add(
			text.New("CNPJ: "+workshop.TaxID, props.Text{Size: 9}),
			text.New(workshop.Address, props.Text{Size: 9, Top: 4}),
			text.New(workshop.Phone+"  "+workshop.Email, props.Text{Size: 9, Top: 8}),
		),
		col.New(4).Add(
			text.New("Nº "+order.ID.String()[:8], props.Text{Size: 9, Align: align.Right}),
			text.New("Data: "+order.CreatedAt.Format("02/01/2006"), props.Text{Size: 9, Top: 4, Align: align.Right}),
			text.New("Status: "+order.Status, props.Text{Size: 9, Top: 8, Align: align.Right}),
		),
	)

	vehicle := detail.Vehicle
	vehicleLine := fmt.Sprintf("%s %s - %s", vehicle.Make, vehicle.Model, vehicle.Plate)
	if vehicle.Year != nil {
		vehicleLine += fmt.Sprintf(" (%d)", *vehicle.Year)
	}
	m.AddRow(18,
		col.New(6).Add(
			text.New("Cliente", props.Text{Style: fontstyle.Bold}),
			text.New(detail.Customer.Name, props.Text{Top: 5}),
			text.New(detail.Customer.Phone, props.Text{Top: 9, Size: 9}),
		),
		col.New(6).Add(
			text.New("Veículo", props.Text{Style: fontstyle.Bold}),
			text.New(vehicleLine, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Serviço", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Categoria", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Preço base", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, s := range detail.Services {
		m.AddRow(8,
			text.NewCol(6, s.Name, props.Text{Size: 9}),
			text.NewCol(3, s.Category, props.Text{Size: 9}),
			text.NewCol(3, "R$ "+s.BasePrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Top: 3}),
		text.NewCol(2, "R$ "+order.Total.StringFixed(2), props.Text{Style: fontstyle.Bold, Top: 3, Align: align.Right}),
	)
	if order.Note != "" {
		m.AddRow(20,
			col.New(12).Add(
				text.New("Observações", props.Text{Style: fontstyle.Bold}),
				text.New(order.Note, props.Text{Top: 5, Size: 9}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate order sheet: %w", err)
	}
	return doc.GetBytes(), nil
}
