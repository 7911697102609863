package app

import "time"

func (s *ProfileService) SetNow(f func() time.Time)   { s.now = f }
func (s *MealService) SetNow(f func() time.Time)      { s.now = f }
func (s *WeightService) SetNow(f func() time.Time)    { s.now = f }
func (s *DashboardService) SetNow(f func() time.Time) { s.now = f }
func (s *ChartsService) SetNow(f func() time.Time)    { s.now = f }
