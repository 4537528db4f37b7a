package hypothesis

import (
	"context"
	"testing"

	"abtest/domain/stats"
	"abtest/internal"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNormality struct {
	mock.Mock
}

func (m *mockNormality) Name() string { return "mock_normality" }

func (m *mockNormality) Test(xs []float64) (stats.CheckResult, error) {
	args := m.Called(xs)
	return args.Get(0).(stats.CheckResult), args.Error(1)
}

type mockVariance struct {
	mock.Mock
}

func (m *mockVariance) Name() string { return "mock_variance" }

func (m *mockVariance) Test(a, b []float64) (stats.CheckResult, error) {
	args := m.Called(a, b)
	return args.Get(0).(stats.CheckResult), args.Error(1)
}

type mockLocation struct {
	mock.Mock
	kind stats.TestKind
}

func (m *mockLocation) Kind() stats.TestKind { return m.kind }

func (m *mockLocation) Compare(a, b []float64) (stats.Verdict, error) {
	args := m.Called(a, b)
	return args.Get(0).(stats.Verdict), args.Error(1)
}

type mockedSelector struct {
	*Selector
	normality *mockNormality
	variance  *mockVariance
	ttest     *mockLocation
	utest     *mockLocation
}

func newMockedSelector() *mockedSelector {
	m := &mockedSelector{
		normality: &mockNormality{},
		variance:  &mockVariance{},
		ttest:     &mockLocation{kind: stats.TestStudentT},
		utest:     &mockLocation{kind: stats.TestMannWhitneyU},
	}
	m.Selector = &Selector{
		Normality: m.normality,
		Variance:  m.variance,
		TTest:     m.ttest,
		UTest:     m.utest,
		logger:    internal.Discard,
	}
	return m
}

func normalityP(p float64) stats.CheckResult {
	return stats.NewCheckResult(stats.CheckNormality, "mock_normality", 0.97, p)
}

func varianceP(p float64) stats.CheckResult {
	return stats.NewCheckResult(stats.CheckVariance, "mock_variance", 2.6, p)
}

func samplePair() (stats.Sample, stats.Sample) {
	control := stats.NewSample(stats.GroupControl, "Purchase", normalScores(40, 550.89, 134))
	test := stats.NewSample(stats.GroupTest, "Purchase", normalScores(40, 582.11, 161))
	return control, test
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name        string
		normal      bool
		homogeneous bool
		wantTest    stats.TestKind
		wantReason  stats.Reason
	}{
		{"normal and homogeneous", true, true, stats.TestStudentT, stats.ReasonAssumptionsMet},
		{"normal and heterogeneous", true, false, stats.TestMannWhitneyU, stats.ReasonHeterogeneousVariance},
		{"non-normal", false, true, stats.TestMannWhitneyU, stats.ReasonNonNormal},
		{"non-normal heterogeneous", false, false, stats.TestMannWhitneyU, stats.ReasonNonNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, reason := Choose(tt.normal, tt.homogeneous)
			assert.Equal(t, tt.wantTest, test)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

// TestSelector_ReferenceCampaign replays the reference bidding campaign:
// Shapiro p 0.589 and 0.154, Levene p 0.108, t-test p 0.349.
func TestSelector_ReferenceCampaign(t *testing.T) {
	m := newMockedSelector()
	m.normality.On("Test", mock.Anything).Return(normalityP(0.589), nil).Once()
	m.normality.On("Test", mock.Anything).Return(normalityP(0.154), nil).Once()
	m.variance.On("Test", mock.Anything, mock.Anything).Return(varianceP(0.108), nil).Once()
	m.ttest.On("Compare", mock.Anything, mock.Anything).Return(stats.NewVerdict(stats.TestStudentT, -0.9416, 0.349), nil).Once()

	control, test := samplePair()
	d, err := m.Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.Equal(t, stats.GroupControl, d.Normality[0].Group)
	assert.Equal(t, stats.GroupTest, d.Normality[1].Group)
	assert.True(t, d.BothNormal())
	require.NotNil(t, d.Variance)
	assert.False(t, d.Variance.Violated)
	assert.Equal(t, stats.TestStudentT, d.Test)
	assert.Equal(t, stats.ReasonAssumptionsMet, d.Reason)
	assert.False(t, d.Verdict.Rejected)
	assert.Equal(t, stats.MessageNotSignificant, d.Verdict.Message)

	m.normality.AssertExpectations(t)
	m.variance.AssertExpectations(t)
	m.ttest.AssertExpectations(t)
	m.utest.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestSelector_VariancePValueRoutes(t *testing.T) {
	tests := []struct {
		name      string
		varianceP float64
		want      stats.TestKind
	}{
		{"homogeneous at boundary", 0.05, stats.TestStudentT},
		{"homogeneous", 0.5, stats.TestStudentT},
		{"heterogeneous", 0.0499, stats.TestMannWhitneyU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedSelector()
			m.normality.On("Test", mock.Anything).Return(normalityP(0.5), nil)
			m.variance.On("Test", mock.Anything, mock.Anything).Return(varianceP(tt.varianceP), nil).Once()
			m.ttest.On("Compare", mock.Anything, mock.Anything).Return(stats.NewVerdict(stats.TestStudentT, 1, 0.3), nil)
			m.utest.On("Compare", mock.Anything, mock.Anything).Return(stats.NewVerdict(stats.TestMannWhitneyU, 700, 0.3), nil)

			control, test := samplePair()
			d, err := m.Select(context.Background(), control, test)
			require.NoError(t, err)

			assert.Equal(t, tt.want, d.Test)
			assert.Equal(t, tt.want, d.Verdict.Test)
		})
	}
}

func TestSelector_NonNormalSkipsVarianceCheck(t *testing.T) {
	m := newMockedSelector()
	m.normality.On("Test", mock.Anything).Return(normalityP(0.3), nil).Once()
	m.normality.On("Test", mock.Anything).Return(normalityP(0.001), nil).Once()
	m.utest.On("Compare", mock.Anything, mock.Anything).Return(stats.NewVerdict(stats.TestMannWhitneyU, 450, 0.01), nil).Once()

	control, test := samplePair()
	d, err := m.Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.False(t, d.BothNormal())
	assert.Nil(t, d.Variance)
	assert.Equal(t, stats.TestMannWhitneyU, d.Test)
	assert.Equal(t, stats.ReasonNonNormal, d.Reason)
	assert.True(t, d.Verdict.Rejected)

	m.normality.AssertNumberOfCalls(t, "Test", 2)
	m.variance.AssertNotCalled(t, "Test", mock.Anything, mock.Anything)
	m.ttest.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestSelector_PassesSamplesInOrder(t *testing.T) {
	m := newMockedSelector()
	control, test := samplePair()

	m.normality.On("Test", control.Values()).Return(normalityP(0.9), nil).Once()
	m.normality.On("Test", test.Values()).Return(normalityP(0.9), nil).Once()
	m.variance.On("Test", control.Values(), test.Values()).Return(varianceP(0.9), nil).Once()
	m.ttest.On("Compare", control.Values(), test.Values()).Return(stats.NewVerdict(stats.TestStudentT, -1, 0.3), nil).Once()

	_, err := m.Select(context.Background(), control, test)
	require.NoError(t, err)

	m.normality.AssertExpectations(t)
	m.variance.AssertExpectations(t)
	m.ttest.AssertExpectations(t)
}

func TestSelector_PropagatesCheckErrors(t *testing.T) {
	m := newMockedSelector()
	m.normality.On("Test", mock.Anything).Return(stats.CheckResult{}, errors.InsufficientData("too small"))

	control, test := samplePair()
	_, err := m.Select(context.Background(), control, test)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
	assert.Contains(t, err.Error(), "control group")
}

func TestSelector_RoutesByLocationKind(t *testing.T) {
	m := newMockedSelector()
	m.Selector.TTest, m.Selector.UTest = m.utest, m.ttest

	m.normality.On("Test", mock.Anything).Return(normalityP(0.9), nil)
	m.variance.On("Test", mock.Anything, mock.Anything).Return(varianceP(0.9), nil)
	m.ttest.On("Compare", mock.Anything, mock.Anything).Return(stats.NewVerdict(stats.TestStudentT, 0.4, 0.7), nil).Once()

	control, test := samplePair()
	decision, err := m.Select(context.Background(), control, test)
	require.NoError(t, err)
	assert.Equal(t, stats.TestStudentT, decision.Test)
	m.ttest.AssertExpectations(t)
	m.utest.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestSelector_MissingLocationKind(t *testing.T) {
	m := newMockedSelector()
	m.utest.kind = stats.TestStudentT

	m.normality.On("Test", mock.Anything).Return(normalityP(0.01), nil)

	control, test := samplePair()
	_, err := m.Select(context.Background(), control, test)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
	m.ttest.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
	m.utest.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestSelector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	control, test := samplePair()
	_, err := NewSelector(internal.Discard).Select(ctx, control, test)
	assert.ErrorIs(t, err, context.Canceled)
}

// Selector over the real Shapiro-Wilk, Levene and location tests.

func TestSelector_SameNormalShapeChoosesTTest(t *testing.T) {
	control := stats.NewSample(stats.GroupControl, "Purchase", normalScores(40, 550, 130))
	test := stats.NewSample(stats.GroupTest, "Purchase", normalScores(40, 582, 130))

	d, err := NewSelector(internal.Discard).Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.True(t, d.BothNormal())
	require.NotNil(t, d.Variance)
	assert.True(t, d.Variance.Satisfied())
	assert.Equal(t, stats.TestStudentT, d.Test)
	assert.Less(t, d.Verdict.Statistic, 0.0)
	assert.False(t, d.Verdict.Rejected)
}

func TestSelector_SkewedSampleChoosesMannWhitney(t *testing.T) {
	control := stats.NewSample(stats.GroupControl, "Purchase", normalScores(40, 550, 130))
	test := stats.NewSample(stats.GroupTest, "Purchase", exponentialScores(40, 580))

	d, err := NewSelector(internal.Discard).Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.False(t, d.Normality[0].Violated)
	assert.True(t, d.Normality[1].Violated)
	assert.Nil(t, d.Variance)
	assert.Equal(t, stats.TestMannWhitneyU, d.Test)
	assert.Equal(t, stats.ReasonNonNormal, d.Reason)
}

func TestSelector_UnequalSpreadChoosesMannWhitney(t *testing.T) {
	control := stats.NewSample(stats.GroupControl, "Purchase", normalScores(30, 500, 10))
	test := stats.NewSample(stats.GroupTest, "Purchase", normalScores(30, 500, 100))

	d, err := NewSelector(internal.Discard).Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.True(t, d.BothNormal())
	require.NotNil(t, d.Variance)
	assert.True(t, d.Variance.Violated)
	assert.Equal(t, stats.TestMannWhitneyU, d.Test)
	assert.Equal(t, stats.ReasonHeterogeneousVariance, d.Reason)
}

func TestSelector_Deterministic(t *testing.T) {
	control := stats.NewSample(stats.GroupControl, "Purchase", []float64{
		520, 610, 480, 555, 590, 430, 700, 515, 600, 545, 505, 575, 650, 470, 560,
	})
	test := stats.NewSample(stats.GroupTest, "Purchase", []float64{
		585, 640, 530, 610, 495, 700, 560, 625, 590, 540, 655, 600, 570, 615, 520,
	})

	selector := NewSelector(internal.Discard)
	first, err := selector.Select(context.Background(), control, test)
	require.NoError(t, err)
	second, err := selector.Select(context.Background(), control, test)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
