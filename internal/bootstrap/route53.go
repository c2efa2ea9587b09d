package bootstrap

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Route53Bootstrap discovers and advertises ring membership through a
// Route 53 hosted zone: peers are the set of values on a single multi-
// value A/TXT-style record, refreshed on every Discover/Register call.
// This is an alternative to StaticBootstrap for environments where nodes
// don't share a fixed, pre-written peer list (e.g. autoscaled fleets).
type Route53Bootstrap struct {
	client       *route53.Client
	hostedZoneID string
	recordName   string
	ttl          int64
}

// NewRoute53Bootstrap builds a Discoverer backed by Route 53, loading AWS
// credentials and region from the environment the way the AWS SDK v2
// default credential chain does.
func NewRoute53Bootstrap(cfg Route53Config) (*Route53Bootstrap, error) {
	if cfg.HostedZoneID == "" || cfg.RecordName == "" {
		return nil, fmt.Errorf("bootstrap: route53 requires hosted_zone_id and record_name")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: loading AWS config: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	return &Route53Bootstrap{
		client:       route53.NewFromConfig(awsCfg),
		hostedZoneID: cfg.HostedZoneID,
		recordName:   cfg.RecordName,
		ttl:          ttl,
	}, nil
}

// Discover lists the current peer addresses held in the TXT record.
func (r *Route53Bootstrap) Discover(ctx context.Context) ([]string, error) {
	out, err := r.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    &r.hostedZoneID,
		StartRecordName: &r.recordName,
		StartRecordType: types.RRTypeTxt,
		MaxItems:        aws1(1),
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: route53 list records: %w", err)
	}

	var peers []string
	for _, rs := range out.ResourceRecordSets {
		if rs.Name == nil || *rs.Name != dnsName(r.recordName) {
			continue
		}
		for _, rr := range rs.ResourceRecords {
			if rr.Value != nil {
				peers = append(peers, unquote(*rr.Value))
			}
		}
	}
	return peers, nil
}

// Register upserts self into the TXT record's value set.
func (r *Route53Bootstrap) Register(ctx context.Context, self string) error {
	peers, err := r.Discover(ctx)
	if err != nil {
		return err
	}
	if !contains(peers, self) {
		peers = append(peers, self)
	}
	return r.upsert(ctx, peers)
}

// Deregister removes self from the TXT record's value set. When self is
// the record's only value, the record is left unchanged.
func (r *Route53Bootstrap) Deregister(ctx context.Context, self string) error {
	peers, err := r.Discover(ctx)
	if err != nil {
		return err
	}
	remaining := peers[:0]
	for _, p := range peers {
		if p != self {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 0 {
		return nil
	}
	return r.upsert(ctx, remaining)
}

func (r *Route53Bootstrap) upsert(ctx context.Context, peers []string) error {
	records := make([]types.ResourceRecord, 0, len(peers))
	for _, p := range peers {
		v := quote(p)
		records = append(records, types.ResourceRecord{Value: &v})
	}
	name := dnsName(r.recordName)
	_, err := r.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: &r.hostedZoneID,
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            &name,
						Type:            types.RRTypeTxt,
						TTL:             &r.ttl,
						ResourceRecords: records,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bootstrap: route53 upsert: %w", err)
	}
	return nil
}

func dnsName(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func quote(s string) string   { return "\"" + s + "\"" }
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func aws1(v int32) *int32 { return &v }
