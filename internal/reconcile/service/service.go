package service

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"price-recon/internal/reconcile/model"
)

type outcome struct {
	rec *model.Record
	rej *model.Rejection
	err error
}

// Run — основная сверка. Индексирует A, проходит по B в исходном порядке,
// на каждую запись B — не больше одной строки отчёта.
func Run(ctx context.Context, a, b []model.Product, opt model.Options) (model.Result, error) {
	if opt.Workers < 1 {
		opt.Workers = 1
	}

	// 1) Индекс по A
	idx := buildLookup(a, opt)

	// 2) Проход по B; каждая запись независима, пишем в свой слот
	outs := make([]outcome, len(b))
	if opt.Workers > 1 && len(b) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opt.Workers)
		for i := range b {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outs[i] = idx.compare(b[i], opt)
				if opt.StrictPrices && outs[i].err != nil {
					return outs[i].err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil && ctx.Err() != nil {
			return model.Result{}, err
		}
	} else {
		for i := range b {
			if err := ctx.Err(); err != nil {
				return model.Result{}, err
			}
			outs[i] = idx.compare(b[i], opt)
			if opt.StrictPrices && outs[i].err != nil {
				break
			}
		}
	}

	// 3) Сборка в порядке B
	res := model.Result{
		Records: make([]model.Record, 0, len(b)),
		Opts:    opt,
		Stats: model.Stats{
			CatalogA:    len(a),
			CatalogB:    len(b),
			UniqueA:     idx.Len(),
			DuplicatesA: idx.dups,
		},
	}
	for _, o := range outs {
		if o.err != nil && opt.StrictPrices {
			return model.Result{}, o.err
		}
		switch {
		case o.rec != nil:
			res.Records = append(res.Records, *o.rec)
			res.Stats.Matched++
		case o.rej != nil:
			res.Rejected = append(res.Rejected, *o.rej)
			switch o.rej.Reason {
			case model.ReasonBelowThreshold:
				res.Stats.BelowThreshold++
			case model.ReasonInvalidPrice:
				res.Stats.InvalidPrices++
			}
		}
	}
	return res, nil
}

func (idx *Lookup) compare(p model.Product, opt model.Options) outcome {
	nameB := p.Name
	if opt.NormalizeNames {
		nameB = NormalizeName(nameB)
	}

	m, ok := idx.best(nameB)
	if !ok {
		return outcome{rej: &model.Rejection{Name: p.Name, Price: p.Price, Reason: model.ReasonNoCandidates}}
	}
	if m.Score < opt.Threshold {
		return outcome{rej: &model.Rejection{
			Name: p.Name, Price: p.Price, Reason: model.ReasonBelowThreshold,
			Best: m.Name, Score: m.Score,
		}}
	}

	priceA, _ := idx.Price(m.Name)
	rec, err := buildRecord(m, priceA, nameB, p.Price)
	if err != nil {
		return outcome{
			err: err,
			rej: &model.Rejection{
				Name: p.Name, Price: p.Price, Reason: model.ReasonInvalidPrice,
				Best: m.Name, Score: m.Score,
			},
		}
	}
	return outcome{rec: &rec}
}

func buildRecord(m model.MatchResult, priceA, nameB, priceB string) (model.Record, error) {
	diff, err := PriceDiff(priceA, priceB)
	if err != nil {
		return model.Record{}, err
	}
	upA, errA := ExtractUnitPrice(m.Name, priceA)
	upB, errB := ExtractUnitPrice(nameB, priceB)
	if err := errors.Join(errA, errB); err != nil {
		return model.Record{}, err
	}
	return model.Record{
		ProductNameA:  m.Name,
		ProductNameB:  nameB,
		PriceA:        priceA,
		PriceB:        priceB,
		PriceDiff:     diff,
		UnitPriceA:    upA.String(),
		UnitPriceB:    upB.String(),
		UnitPriceDiff: formatUnitDollars(math.Abs(upA.Value - upB.Value)),
		MatchingScore: m.Score,
	}, nil
}
