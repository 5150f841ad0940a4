// Package zones looks up the availability zones a network can span.
package zones

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// ErrInsufficientZones is returned when fewer zones are available than
// requested.
var ErrInsufficientZones = errors.New("zones: insufficient availability zones")

// Lister returns the names of the zones currently available in a region.
type Lister interface {
	AvailableZones(ctx context.Context) ([]string, error)
}

// Select returns the first count zones reported by l.
func Select(ctx context.Context, l Lister, count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("zones: count must be positive, got %d", count)
	}
	available, err := l.AvailableZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing availability zones: %w", err)
	}
	if len(available) < count {
		return nil, fmt.Errorf("%w: need %d, %d available", ErrInsufficientZones, count, len(available))
	}
	return append([]string(nil), available[:count]...), nil
}

// Static is a fixed zone list, used for previews and tests.
type Static []string

// AvailableZones returns the list unchanged.
func (s Static) AvailableZones(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// DescribeAPI is the subset of the EC2 client used by EC2Lister.
type DescribeAPI interface {
	DescribeAvailabilityZones(ctx context.Context, in *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
}

// EC2Lister asks EC2 for the zones in the "available" state.
type EC2Lister struct {
	Client DescribeAPI
}

// NewEC2Lister creates a lister from an AWS config.
func NewEC2Lister(cfg aws.Config) *EC2Lister {
	return &EC2Lister{Client: ec2.NewFromConfig(cfg)}
}

// AvailableZones returns zone names sorted alphabetically.
func (l *EC2Lister) AvailableZones(ctx context.Context) ([]string, error) {
	out, err := l.Client.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []types.Filter{{
			Name:   aws.String("state"),
			Values: []string{string(types.AvailabilityZoneStateAvailable)},
		}},
	})
	if err != nil {
		return nil, err
	}
	var names []string
	for _, z := range out.AvailabilityZones {
		if z.ZoneName != nil {
			names = append(names, *z.ZoneName)
		}
	}
	sort.Strings(names)
	return names, nil
}
